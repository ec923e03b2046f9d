package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"user_id",
			"service",
			"booking_date",
			"booking_time",
			"status",
			"version",
			"created_at",
			"updated_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"user_id": bson.M{
				"bsonType":  "string",
				"minLength": 36,
				"maxLength": 36,
			},

			"client_name": bson.M{
				"bsonType":  "string",
				"maxLength": 200,
			},

			"barber_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"barber_user_id": bson.M{
				"bsonType":  "string",
				"minLength": 36,
				"maxLength": 36,
			},

			"barber_name": bson.M{
				"bsonType":  "string",
				"maxLength": 100,
			},

			"service": bson.M{
				"bsonType": "object",
				"required": []string{"id", "name", "duration_minutes", "price"},
				"properties": bson.M{
					"id": bson.M{
						"bsonType":  "string",
						"minLength": 24,
						"maxLength": 24,
					},
					"name": bson.M{
						"bsonType":  "string",
						"minLength": 1,
						"maxLength": 100,
					},
					"description": bson.M{
						"bsonType": "string",
					},
					"duration_minutes": bson.M{
						"bsonType": []string{"int", "long"},
						"minimum":  1,
					},
					"price": bson.M{
						"bsonType": "decimal",
						"minimum":  0,
					},
				},
			},

			"booking_date": bson.M{
				"bsonType": "string",
				"pattern":  `^\d{4}-\d{2}-\d{2}$`,
			},

			"booking_time": bson.M{
				"bsonType": "string",
				"pattern":  `^\d{2}:\d{2}$`,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"PENDING",
					"CONFIRMED",
					"CANCELLED",
					"COMPLETED",
				},
			},

			"notes": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},

			"version": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
