// Package docs holds the OpenAPI document served under /swagger/.
// Regenerate with: swag init -g docs/swagger.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "SiteTrack maintainers"
        },
        "license": {
            "name": "MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "tags": [
                    "Health"
                ],
                "summary": "Health Check",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    }
                }
            }
        },
        "/api/location/update": {
            "post": {
                "tags": [
                    "location"
                ],
                "summary": "Report driver location",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.LocationUpdateResp"
                        }
                    },
                    "400": {
                        "description": "Bad request",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "403": {
                        "description": "Posting for another driver",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "422": {
                        "description": "Validation error",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    }
                },
                "description": "Stale or out-of-range pings are dropped and still answered with 200.",
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "description": "Location ping",
                        "schema": {
                            "$ref": "#/definitions/dto.LocationUpdateReq"
                        }
                    }
                ]
            }
        },
        "/api/location/active": {
            "get": {
                "tags": [
                    "location"
                ],
                "summary": "List active drivers",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/models.ActiveDriver"
                            }
                        }
                    }
                }
            }
        },
        "/api/location/history/{delivery_id}": {
            "get": {
                "tags": [
                    "location"
                ],
                "summary": "Location history of a delivery",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/models.HistoryPoint"
                            }
                        }
                    },
                    "422": {
                        "description": "Validation error",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "503": {
                        "description": "History storage not configured",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "delivery_id",
                        "in": "path",
                        "required": true,
                        "description": "Delivery ID"
                    },
                    {
                        "type": "integer",
                        "name": "limit",
                        "in": "query",
                        "description": "Maximum number of points (default 1000)"
                    }
                ]
            }
        },
        "/api/alerts": {
            "get": {
                "tags": [
                    "alerts"
                ],
                "summary": "List alerts",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/models.Alert"
                            }
                        }
                    },
                    "422": {
                        "description": "Validation error",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "boolean",
                        "name": "resolved",
                        "in": "query",
                        "description": "Filter by resolution state"
                    },
                    {
                        "type": "string",
                        "name": "driver_id",
                        "in": "query",
                        "description": "Filter by driver"
                    },
                    {
                        "type": "string",
                        "name": "type",
                        "in": "query",
                        "description": "deviation | speed | emergency | stopped"
                    }
                ]
            }
        },
        "/api/alerts/{id}/resolve": {
            "put": {
                "tags": [
                    "alerts"
                ],
                "summary": "Resolve an alert",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "404": {
                        "description": "Alert not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "409": {
                        "description": "Already resolved",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Alert ID"
                    }
                ]
            }
        },
        "/api/alerts/emergency": {
            "post": {
                "tags": [
                    "alerts"
                ],
                "summary": "Report an emergency",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "400": {
                        "description": "Bad request",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "403": {
                        "description": "Reporting for another driver",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "422": {
                        "description": "Validation error",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    }
                },
                "description": "Raises a critical emergency alert regardless of geofence state",
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "description": "Emergency report",
                        "schema": {
                            "$ref": "#/definitions/dto.EmergencyReq"
                        }
                    }
                ]
            }
        },
        "/api/deliveries": {
            "get": {
                "tags": [
                    "deliveries"
                ],
                "summary": "List deliveries",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/models.Delivery"
                            }
                        }
                    },
                    "422": {
                        "description": "Validation error",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "status",
                        "in": "query",
                        "description": "pending | in_progress | completed | cancelled"
                    },
                    {
                        "type": "string",
                        "name": "driver_id",
                        "in": "query",
                        "description": "Filter by bound driver"
                    }
                ]
            },
            "post": {
                "tags": [
                    "deliveries"
                ],
                "summary": "Create a delivery",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/models.Delivery"
                        }
                    },
                    "400": {
                        "description": "Bad request",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "403": {
                        "description": "Admin only",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "404": {
                        "description": "Route not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "422": {
                        "description": "Validation error",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "description": "Delivery details",
                        "schema": {
                            "$ref": "#/definitions/dto.CreateDeliveryReq"
                        }
                    }
                ]
            }
        },
        "/api/deliveries/{id}": {
            "get": {
                "tags": [
                    "deliveries"
                ],
                "summary": "Get a delivery",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.Delivery"
                        }
                    },
                    "404": {
                        "description": "Delivery not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Delivery ID"
                    }
                ]
            }
        },
        "/api/deliveries/{id}/status": {
            "put": {
                "tags": [
                    "deliveries"
                ],
                "summary": "Change delivery status",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "403": {
                        "description": "Not allowed for this actor",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "404": {
                        "description": "Delivery not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "409": {
                        "description": "Transition rejected",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "422": {
                        "description": "Validation error",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "503": {
                        "description": "Persistence unavailable",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    }
                },
                "description": "Either status (in_progress, completed, cancelled) or action (start, arrive, complete, cancel) is required.",
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Delivery ID"
                    },
                    {
                        "type": "string",
                        "name": "status",
                        "in": "query",
                        "description": "Target status"
                    },
                    {
                        "type": "string",
                        "name": "action",
                        "in": "query",
                        "description": "Transition action"
                    }
                ]
            }
        },
        "/api/deliveries/{id}/assign": {
            "post": {
                "tags": [
                    "deliveries"
                ],
                "summary": "Assign a driver",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.Delivery"
                        }
                    },
                    "404": {
                        "description": "Delivery not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "409": {
                        "description": "Already bound or not pending",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "422": {
                        "description": "Validation error",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Delivery ID"
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "description": "Driver",
                        "schema": {
                            "$ref": "#/definitions/dto.DriverReq"
                        }
                    }
                ]
            }
        },
        "/api/qr/scan": {
            "post": {
                "tags": [
                    "deliveries"
                ],
                "summary": "Scan a delivery QR code",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "400": {
                        "description": "Unreadable code",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "404": {
                        "description": "Delivery not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "409": {
                        "description": "Already bound or not pending",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "422": {
                        "description": "Route mismatch",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "description": "Scanned payload",
                        "schema": {
                            "$ref": "#/definitions/dto.ScanQRReq"
                        }
                    }
                ]
            }
        },
        "/api/routes": {
            "get": {
                "tags": [
                    "routes"
                ],
                "summary": "List routes",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/models.Route"
                            }
                        }
                    }
                }
            }
        },
        "/api/routes/{id}": {
            "get": {
                "tags": [
                    "routes"
                ],
                "summary": "Get a route",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.Route"
                        }
                    },
                    "404": {
                        "description": "Route not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Route ID"
                    }
                ]
            }
        },
        "/api/stats/dashboard": {
            "get": {
                "tags": [
                    "stats"
                ],
                "summary": "Dashboard statistics",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.DashboardStats"
                        }
                    }
                }
            }
        },
        "/ws/admin": {
            "get": {
                "tags": [
                    "websocket"
                ],
                "summary": "Admin live feed",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "101": {
                        "description": "Switching Protocols"
                    }
                },
                "description": "WebSocket. Sends active_drivers on connect, then location_update, alert, emergency, alert_resolved, delivery_status and driver_disconnected events. Accepts message_driver commands."
            }
        },
        "/ws/drivers/{driver_id}": {
            "get": {
                "tags": [
                    "websocket"
                ],
                "summary": "Driver location socket",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "101": {
                        "description": "Switching Protocols"
                    },
                    "403": {
                        "description": "Socket of another driver",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    }
                },
                "description": "WebSocket. Accepts location frames and answers each with location_ack.",
                "parameters": [
                    {
                        "type": "string",
                        "name": "driver_id",
                        "in": "path",
                        "required": true,
                        "description": "Driver ID"
                    }
                ]
            }
        }
    },
    "definitions": {
        "dto.LocationUpdateReq": {
            "type": "object",
            "properties": {
                "driver_id": {
                    "type": "string"
                },
                "driver_name": {
                    "type": "string"
                },
                "delivery_id": {
                    "type": "string"
                },
                "latitude": {
                    "type": "number"
                },
                "longitude": {
                    "type": "number"
                },
                "speed": {
                    "type": "number"
                },
                "heading": {
                    "type": "number"
                },
                "timestamp": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "dto.LocationUpdateResp": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "accepted": {
                    "type": "boolean"
                },
                "reason": {
                    "type": "string"
                },
                "alerts": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/models.Alert"
                    }
                }
            }
        },
        "dto.EmergencyReq": {
            "type": "object",
            "properties": {
                "driver_id": {
                    "type": "string"
                },
                "driver_name": {
                    "type": "string"
                },
                "delivery_id": {
                    "type": "string"
                },
                "latitude": {
                    "type": "number"
                },
                "longitude": {
                    "type": "number"
                },
                "message": {
                    "type": "string"
                }
            }
        },
        "dto.CreateDeliveryReq": {
            "type": "object",
            "properties": {
                "route_id": {
                    "type": "string"
                },
                "driver_id": {
                    "type": "string"
                },
                "driver_name": {
                    "type": "string"
                },
                "vehicle_type": {
                    "type": "string"
                },
                "license_plate": {
                    "type": "string"
                },
                "company": {
                    "type": "string"
                },
                "notes": {
                    "type": "string"
                },
                "scheduled_time": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "dto.DriverReq": {
            "type": "object",
            "properties": {
                "driver_id": {
                    "type": "string"
                },
                "driver_name": {
                    "type": "string"
                },
                "vehicle_type": {
                    "type": "string"
                },
                "license_plate": {
                    "type": "string"
                },
                "company": {
                    "type": "string"
                }
            }
        },
        "dto.ScanQRReq": {
            "type": "object",
            "properties": {
                "qr_data": {
                    "description": "delivery code as an object or JSON string"
                },
                "driver_id": {
                    "type": "string"
                },
                "driver_name": {
                    "type": "string"
                },
                "vehicle_type": {
                    "type": "string"
                },
                "license_plate": {
                    "type": "string"
                },
                "company": {
                    "type": "string"
                }
            }
        },
        "models.Alert": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "type": {
                    "type": "string"
                },
                "severity": {
                    "type": "string"
                },
                "driver_id": {
                    "type": "string"
                },
                "driver_name": {
                    "type": "string"
                },
                "delivery_id": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "latitude": {
                    "type": "number"
                },
                "longitude": {
                    "type": "number"
                },
                "created_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "updated_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "refreshes": {
                    "type": "integer"
                },
                "is_resolved": {
                    "type": "boolean"
                },
                "resolved_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "resolved_by": {
                    "type": "string"
                }
            }
        },
        "models.ActiveDriver": {
            "type": "object",
            "properties": {
                "driver_id": {
                    "type": "string"
                },
                "driver_name": {
                    "type": "string"
                },
                "delivery_id": {
                    "type": "string"
                },
                "latitude": {
                    "type": "number"
                },
                "longitude": {
                    "type": "number"
                },
                "speed": {
                    "type": "number"
                },
                "heading": {
                    "type": "number"
                },
                "status": {
                    "type": "string"
                },
                "vehicle_type": {
                    "type": "string"
                },
                "route_name": {
                    "type": "string"
                },
                "last_update": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "models.HistoryPoint": {
            "type": "object",
            "properties": {
                "driver_id": {
                    "type": "string"
                },
                "delivery_id": {
                    "type": "string"
                },
                "latitude": {
                    "type": "number"
                },
                "longitude": {
                    "type": "number"
                },
                "speed": {
                    "type": "number"
                },
                "heading": {
                    "type": "number"
                },
                "timestamp": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "models.Delivery": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "qr_code": {
                    "type": "string"
                },
                "route_id": {
                    "type": "string"
                },
                "route_name": {
                    "type": "string"
                },
                "driver_id": {
                    "type": "string"
                },
                "driver_name": {
                    "type": "string"
                },
                "vehicle_type": {
                    "type": "string"
                },
                "license_plate": {
                    "type": "string"
                },
                "status": {
                    "type": "string"
                },
                "company": {
                    "type": "string"
                },
                "notes": {
                    "type": "string"
                },
                "scheduled_time": {
                    "type": "string",
                    "format": "date-time"
                },
                "start_time": {
                    "type": "string",
                    "format": "date-time"
                },
                "end_time": {
                    "type": "string",
                    "format": "date-time"
                },
                "created_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "updated_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "models.Waypoint": {
            "type": "object",
            "properties": {
                "latitude": {
                    "type": "number"
                },
                "longitude": {
                    "type": "number"
                },
                "name": {
                    "type": "string"
                }
            }
        },
        "models.Destination": {
            "type": "object",
            "properties": {
                "latitude": {
                    "type": "number"
                },
                "longitude": {
                    "type": "number"
                },
                "name": {
                    "type": "string"
                },
                "category": {
                    "type": "string"
                }
            }
        },
        "models.DangerZone": {
            "type": "object",
            "properties": {
                "latitude": {
                    "type": "number"
                },
                "longitude": {
                    "type": "number"
                },
                "radius": {
                    "type": "number"
                },
                "description": {
                    "type": "string"
                }
            }
        },
        "models.Route": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "waypoints": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/models.Waypoint"
                    }
                },
                "destination": {
                    "$ref": "#/definitions/models.Destination"
                },
                "danger_zones": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/models.DangerZone"
                    }
                },
                "speed_limit": {
                    "type": "number"
                },
                "vehicle_types": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "models.DashboardStats": {
            "type": "object",
            "properties": {
                "active_drivers": {
                    "type": "integer"
                },
                "in_progress": {
                    "type": "integer"
                },
                "completed_today": {
                    "type": "integer"
                },
                "active_alerts": {
                    "type": "integer"
                },
                "critical_alerts": {
                    "type": "integer"
                },
                "total_deliveries": {
                    "type": "integer"
                },
                "today_deliveries": {
                    "type": "integer"
                },
                "pending_deliveries": {
                    "type": "integer"
                },
                "generated_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8001",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "SiteTrack API",
	Description:      "Real-time tracking and alerting for site deliveries: location ingestion, geofence alerts, delivery lifecycle and a live admin feed.",
	InfoInstanceName: "sitetrack",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
