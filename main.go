/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/thereadylab/readylab-api/cmd"

// @title           The Ready Lab API
// @version         1.0.0
// @description     Backend API for The Ready Lab online-education platform
// @termsOfService  http://swagger.io/terms/
// @contact.name    API Support
// @contact.url     https://github.com/thereadylab/readylab-api
// @contact.email   support@thereadylab.example.com
// @license.name    MIT
// @license.url     https://opensource.org/licenses/MIT
// @host            localhost:8080
// @BasePath        /
// @schemes         http https
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 JWT bearer token
func main() {
	cmd.Execute()
}
