package signature

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "whsec_test"

func TestVerify(t *testing.T) {
	body := []byte(`{"id":"evt_1","type":"video.asset.ready"}`)
	now := time.Unix(1700000000, 0)

	header := Sign(testSecret, now.Unix(), body)
	assert.NoError(t, verifyAt(header, testSecret, body, 0, now))
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	body := []byte(`{}`)
	now := time.Unix(1700000000, 0)

	header := Sign("other-secret", now.Unix(), body)
	assert.ErrorIs(t, verifyAt(header, testSecret, body, 0, now), ErrInvalidSignature)
}

func TestVerifyRejectsTamperedBody(t *testing.T) {
	now := time.Unix(1700000000, 0)
	header := Sign(testSecret, now.Unix(), []byte(`{"amount":100}`))

	err := verifyAt(header, testSecret, []byte(`{"amount":999}`), 0, now)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyRejectsStaleTimestamp(t *testing.T) {
	body := []byte(`{}`)
	now := time.Unix(1700000000, 0)

	header := Sign(testSecret, now.Add(-10*time.Minute).Unix(), body)
	assert.ErrorIs(t, verifyAt(header, testSecret, body, 0, now), ErrStaleTimestamp)

	// Future timestamps are just as suspect
	header = Sign(testSecret, now.Add(10*time.Minute).Unix(), body)
	assert.ErrorIs(t, verifyAt(header, testSecret, body, 0, now), ErrStaleTimestamp)
}

func TestVerifyCustomTolerance(t *testing.T) {
	body := []byte(`{}`)
	now := time.Unix(1700000000, 0)

	header := Sign(testSecret, now.Add(-10*time.Minute).Unix(), body)
	assert.NoError(t, verifyAt(header, testSecret, body, 15*time.Minute, now))
}

func TestVerifyMalformedHeaders(t *testing.T) {
	body := []byte(`{}`)
	now := time.Unix(1700000000, 0)

	for _, header := range []string{
		"",
		"t=123",
		"v1=deadbeef",
		"t=abc,v1=deadbeef",
		"garbage",
	} {
		err := verifyAt(header, testSecret, body, 0, now)
		assert.ErrorIs(t, err, ErrMalformedHeader, "header %q", header)
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	body := []byte("payload")
	first := Compute(testSecret, 42, body)
	second := Compute(testSecret, 42, body)
	require.Equal(t, first, second)
	assert.Len(t, first, 64) // hex sha256
}
