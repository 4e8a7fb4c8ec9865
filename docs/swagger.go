package docs

// @title           SiteTrack API
// @version         1.0
// @description     Real-time tracking and alerting for site deliveries: location ingestion, geofence alerts, delivery lifecycle and a live admin feed.

// @contact.name   SiteTrack maintainers

// @license.name  MIT

// @host      localhost:8001
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
