package config

const schema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "profile": {"enum": ["classic", "extended"]},
    "seed": {"type": "integer"},
    "step_interval_ms": {"type": "integer", "minimum": 50, "maximum": 60000},
    "database": {"type": "string", "minLength": 1},
    "listen": {"type": "string"},
    "admin_key": {"type": "string"},
    "log_level": {"enum": ["debug", "info", "warn", "error"]},
    "economy": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "enabled": {"type": "boolean"},
        "starting_money": {"type": "number"},
        "bulldoze_refund": {"type": "number", "minimum": 0},
        "costs": {
          "type": "object",
          "additionalProperties": false,
          "properties": {
            "road": {"$ref": "#/definitions/cost"},
            "residential": {"$ref": "#/definitions/cost"},
            "commercial": {"$ref": "#/definitions/cost"},
            "industrial": {"$ref": "#/definitions/cost"},
            "park": {"$ref": "#/definitions/cost"},
            "plaza": {"$ref": "#/definitions/cost"},
            "school": {"$ref": "#/definitions/cost"}
          }
        }
      }
    },
    "amenities": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "park": {"$ref": "#/definitions/amenity"},
        "plaza": {"$ref": "#/definitions/amenity"},
        "school": {"$ref": "#/definitions/amenity"}
      }
    },
    "tasks": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "base_url": {"type": "string", "pattern": "^https?://"},
        "token": {"type": "string"}
      }
    }
  },
  "definitions": {
    "cost": {"type": "number", "minimum": 0},
    "amenity": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "enabled": {"type": "boolean"},
        "bonus": {"type": "number", "minimum": 0},
        "cleanse": {"type": "number", "minimum": 0},
        "count": {"type": "number", "minimum": 0}
      }
    }
  }
}`
