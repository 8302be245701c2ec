// Package docs holds the OpenAPI description served at /swagger.
// Regenerate with: swag init -g cmd/api/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/transcriptions/upload-and-transcribe": {
            "post": {
                "description": "Transcribes an audio file, summarizes it and extracts action items. Numeric meeting ids are saved.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Transcriptions"],
                "summary": "Upload and transcribe a meeting recording",
                "parameters": [
                    {"type": "file", "description": "Audio file (.webm, .wav, .mp3), max 25MB", "name": "audioFile", "in": "formData", "required": true},
                    {"type": "string", "description": "Meeting (booking) id", "name": "meetingId", "in": "formData"},
                    {"type": "string", "description": "User id", "name": "userId", "in": "formData"},
                    {"type": "string", "description": "User display name", "name": "userName", "in": "formData"},
                    {"type": "string", "description": "Replays a previous result for the same user and key", "name": "Idempotency-Key", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/transcription.UploadResponse"}},
                    "400": {"description": "Empty, oversized or unsupported audio", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "502": {"description": "Speech-to-text service rejected the request", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "503": {"description": "Speech-to-text service unavailable", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "504": {"description": "Request cancelled or timed out", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/transcriptions/user/{userId}/recordings": {
            "get": {
                "description": "Returns the recordings of the calling user, newest first",
                "produces": ["application/json"],
                "tags": ["Transcriptions"],
                "summary": "List a user's recordings",
                "parameters": [
                    {"type": "string", "description": "User id", "name": "userId", "in": "path", "required": true},
                    {"type": "string", "description": "Caller identity", "name": "X-User-ID", "in": "header", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/transcription.RecordingListResponse"}},
                    "401": {"description": "Caller not identified", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "403": {"description": "Listing another user's recordings", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/transcriptions/meeting/{meetingId}/transcription": {
            "get": {
                "description": "Returns the latest stored transcription of the meeting for the calling user",
                "produces": ["application/json"],
                "tags": ["Transcriptions"],
                "summary": "Get a meeting transcription",
                "parameters": [
                    {"type": "string", "description": "Meeting (booking) id", "name": "meetingId", "in": "path", "required": true},
                    {"type": "string", "description": "Caller identity", "name": "X-User-ID", "in": "header", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/transcription.RecordingResponse"}},
                    "400": {"description": "Meeting id is not numeric", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "401": {"description": "Caller not identified", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "404": {"description": "No transcription stored", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/openai/chat/completions": {
            "post": {
                "description": "Forwards the request body to the chat completion API and relays its status and body",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["AI"],
                "summary": "Chat completion passthrough",
                "parameters": [
                    {"description": "Chat completion request", "name": "request", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "Upstream response", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "API key not configured", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "503": {"description": "Chat service unavailable", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "common.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {},
                "message": {"type": "string"},
                "details": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "transcription.PersistenceResponse": {
            "type": "object",
            "properties": {
                "attempted": {"type": "boolean"},
                "saved": {"type": "boolean"},
                "recording_id": {"type": "integer"},
                "error": {"type": "string"}
            }
        },
        "transcription.UploadResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "transcription": {"type": "string"},
                "summary": {"type": "string"},
                "actionPoints": {"type": "array", "items": {"type": "string"}},
                "simulated": {"type": "boolean"},
                "timestamp": {"type": "string"},
                "persistence": {"$ref": "#/definitions/transcription.PersistenceResponse"}
            }
        },
        "transcription.RecordingResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "bookingId": {"type": "integer"},
                "userId": {"type": "string"},
                "userName": {"type": "string"},
                "fileName": {"type": "string"},
                "fileSizeBytes": {"type": "integer"},
                "durationSeconds": {"type": "integer"},
                "transcription": {"type": "string"},
                "summary": {"type": "string"},
                "keyPoints": {"type": "array", "items": {"type": "string"}},
                "createdAt": {"type": "string"}
            }
        },
        "transcription.RecordingListResponse": {
            "type": "object",
            "properties": {
                "recordings": {"type": "array", "items": {"$ref": "#/definitions/transcription.RecordingResponse"}},
                "total": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "Meeting Transcription API",
	Description:      "Uploads meeting recordings, transcribes them and extracts a summary with action items.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
