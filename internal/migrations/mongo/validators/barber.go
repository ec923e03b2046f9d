package validators

import "go.mongodb.org/mongo-driver/bson"

var BarberValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"user_id",
			"display_name",
			"specialties",
			"rating",
			"active",
			"created_at",
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

			"display_name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"bio": bson.M{
				"bsonType":  "string",
				"maxLength": 1000,
			},

			"specialties": bson.M{
				"bsonType":    "array",
				"maxItems":    10,
				"uniqueItems": true,
				"items": bson.M{
					"bsonType":  "string",
					"minLength": 2,
					"maxLength": 50,
				},
			},

			"rating": bson.M{
				"bsonType": "decimal",
				"minimum":  0,
				"maximum":  5,
			},

			"active": bson.M{
				"bsonType": "bool",
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
