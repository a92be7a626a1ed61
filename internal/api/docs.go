package api

// @title Payment Gateway API
// @version 1.0
// @description HTTP API for creating and observing on-chain USDT payment sessions

// @contact.name Payment Gateway Support
// @contact.email support@paygate.example

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the API key.
