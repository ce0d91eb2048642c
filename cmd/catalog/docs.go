package main

//go:generate swag init -g cmd/catalog/main.go -o docs

// @title           Exchange Catalog API
// @version         0.1.0
// @description     Vendor discovery, canonical field mappings, links, and coverage.
// @host            localhost:8080
// @BasePath        /
// @schemes         http
