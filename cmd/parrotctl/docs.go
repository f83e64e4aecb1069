package main

// General API documentation for swaggo. Run `make swagger-gen` to generate docs.
//
// @title           parrotctl status API
// @version         1.0
// @description     Read-only status surface served while a provisioning pipeline runs.
//
// @BasePath  /
//
// @schemes http
