package main

import "jobsphere/internal/app"

// @title           JobSphere Auth API
// @version         1.0
// @description     Credential and session issuance service: OTP-gated
// @description     registration, login, admin two-factor login and password
// @description     reset, with JWT access tokens and hashed refresh tokens.
// @BasePath        /
func main() {
	app.Run()
}
