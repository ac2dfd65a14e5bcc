package main

//go:generate swag init -g main.go -d ./,../../internal/handler -o ../../docs --parseDependency --parseInternal

// @title           Finboard API
// @version         0.1.0
// @description     Trading journal: accounts, operations, FX conversion and performance analytics.
// @host            localhost:8080
// @BasePath        /
// @schemes         http
