package validators

import "go.mongodb.org/mongo-driver/bson"

// AnalysisTaskValidator covers the only collection whose shape this service
// fully owns. Mention and aggregate collections carry legacy shapes and stay
// unvalidated.
var AnalysisTaskValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"task_id",
			"company_id",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"task_id": bson.M{
				"bsonType":  "string",
				"minLength": 36,
				"maxLength": 36,
			},

			"company_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 200,
			},

			"company_name": bson.M{
				"bsonType":  "string",
				"maxLength": 200,
			},

			"keywords": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "string",
				},
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending",
					"running",
					"complete",
					"failed",
				},
			},

			"error": bson.M{
				"bsonType": "string",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"started_at": bson.M{
				"bsonType": "date",
			},

			"finished_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
