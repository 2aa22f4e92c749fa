package router

import (
	"fmt"
	"net/http"
)

func registerSwaggerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/", http.StatusMovedPermanently)
	})

	mux.HandleFunc("/swagger/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, swaggerHTML, "/swagger/openapi.json")
	})

	mux.HandleFunc("/swagger/openapi.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(openAPI))
	})
}

const swaggerHTML = `<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <title>Ledger Service API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.onload = function() {
      window.ui = SwaggerUIBundle({
        url: "%s",
        dom_id: "#swagger-ui"
      });
    };
  </script>
</body>
</html>`

const openAPI = `{
  "openapi": "3.0.3",
  "info": {
    "title": "Ledger Service API",
    "version": "1.0.0"
  },
  "components": {
    "securitySchemes": {
      "BearerAuth": {
        "type": "http",
        "scheme": "bearer",
        "bearerFormat": "JWT"
      }
    },
    "schemas": {
      "AmountRequest": {
        "type": "object",
        "required": ["amount"],
        "properties": {
          "amount": {"type": "string", "example": "50.00"}
        }
      },
      "TransferRequest": {
        "type": "object",
        "required": ["account", "amount"],
        "properties": {
          "account": {"type": "string", "example": "0123456789"},
          "amount": {"type": "string", "example": "75.00"}
        }
      }
    }
  },
  "paths": {
    "/accounts/balance": {
      "get": {
        "summary": "Current balance of the authenticated account",
        "security": [{"BearerAuth": []}],
        "responses": {
          "200": {"description": "Balance"},
          "401": {"description": "Unauthorized"},
          "404": {"description": "Account not found"}
        }
      }
    },
    "/accounts/transactions": {
      "get": {
        "summary": "Transaction history, most recent first",
        "security": [{"BearerAuth": []}],
        "responses": {
          "200": {"description": "Transactions"},
          "401": {"description": "Unauthorized"}
        }
      }
    },
    "/accounts/deposit": {
      "post": {
        "summary": "Deposit funds",
        "security": [{"BearerAuth": []}],
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {"$ref": "#/components/schemas/AmountRequest"}
            }
          }
        },
        "responses": {
          "200": {"description": "Deposit applied"},
          "400": {"description": "Invalid request body"},
          "401": {"description": "Unauthorized"},
          "422": {"description": "Invalid amount"}
        }
      }
    },
    "/accounts/withdraw": {
      "post": {
        "summary": "Withdraw funds",
        "security": [{"BearerAuth": []}],
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {"$ref": "#/components/schemas/AmountRequest"}
            }
          }
        },
        "responses": {
          "200": {"description": "Withdrawal applied"},
          "400": {"description": "Invalid request body"},
          "401": {"description": "Unauthorized"},
          "422": {"description": "Invalid amount"}
        }
      }
    },
    "/accounts/transfer": {
      "post": {
        "summary": "Transfer funds to another account",
        "security": [{"BearerAuth": []}],
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {"$ref": "#/components/schemas/TransferRequest"}
            }
          }
        },
        "responses": {
          "200": {"description": "Transfer applied"},
          "400": {"description": "Validation error"},
          "401": {"description": "Unauthorized"},
          "404": {"description": "Account not found"},
          "422": {"description": "Invalid amount"}
        }
      }
    }
  }
}`
