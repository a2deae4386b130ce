// Package schema holds the JSON Schemas that request payloads are checked
// against before decoding. HTTP bodies and gRPC Struct messages share them.
package schema

import "github.com/joseph-ayodele/fieldops/internal/common"

var (
	Materials      = common.MustCompileSchema("materials", materialsSchema())
	WeatherSample  = common.MustCompileSchema("weather_sample", weatherSampleSchema())
	Forecast       = common.MustCompileSchema("forecast", forecastSchema())
	FenceCheck     = common.MustCompileSchema("fence_check", fenceCheckSchema())
	Route          = common.MustCompileSchema("route", routeSchema())
	ClockAction    = common.MustCompileSchema("clock_action", clockActionSchema())
	Employee       = common.MustCompileSchema("employee", employeeSchema())
	Estimate       = common.MustCompileSchema("estimate", estimateSchema())
	AwardXP        = common.MustCompileSchema("award_xp", awardXPSchema())
	JobCompletion  = common.MustCompileSchema("job_completion", jobCompletionSchema())
	FeatureFlags   = common.MustCompileSchema("feature_flags", featureFlagsSchema())
	ListParameters = common.MustCompileSchema("list_parameters", listParametersSchema())
)

func object(props map[string]any, required ...string) map[string]any {
	s := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func nonNegative() map[string]any {
	return map[string]any{"type": "number", "minimum": 0}
}

func count() map[string]any {
	return map[string]any{"type": "integer", "minimum": 0}
}

func str(maxLength int) map[string]any {
	return map[string]any{"type": "string", "maxLength": maxLength}
}

func latitude() map[string]any {
	return map[string]any{"type": "number", "minimum": -90, "maximum": 90}
}

func longitude() map[string]any {
	return map[string]any{"type": "number", "minimum": -180, "maximum": 180}
}

func materialsSchema() map[string]any {
	return object(map[string]any{
		"sealcoat": object(map[string]any{
			"areaSqFt":              nonNegative(),
			"coats":                 nonNegative(),
			"coverageSqFtPerGallon": map[string]any{"type": "number"},
		}, "areaSqFt", "coats", "coverageSqFtPerGallon"),
		"crack": object(map[string]any{
			"linearFeet":          nonNegative(),
			"poundsPerLinearFoot": nonNegative(),
		}, "linearFeet", "poundsPerLinearFoot"),
		"striping": object(map[string]any{
			"linearFeet":          nonNegative(),
			"coverageLfPerGallon": map[string]any{"type": "number"},
		}, "linearFeet", "coverageLfPerGallon"),
	})
}

func weatherSampleSchema() map[string]any {
	return object(map[string]any{
		"tempF":           map[string]any{"type": "number"},
		"condition":       str(100),
		"windMph":         nonNegative(),
		"precipitationIn": nonNegative(),
	}, "tempF", "condition")
}

func forecastSchema() map[string]any {
	point := object(map[string]any{
		"time":            map[string]any{"type": "string", "minLength": 1},
		"precipitationIn": nonNegative(),
		"tempF":           map[string]any{"type": "number"},
		"windMph":         nonNegative(),
	}, "time", "tempF")
	return object(map[string]any{
		"forecast": map[string]any{"type": "array", "items": point, "maxItems": 1000},
	}, "forecast")
}

func point() map[string]any {
	return object(map[string]any{
		"latitude":  latitude(),
		"longitude": longitude(),
	}, "latitude", "longitude")
}

func fenceCheckSchema() map[string]any {
	fence := object(map[string]any{
		"id":           str(100),
		"name":         str(200),
		"center":       point(),
		"radiusMeters": nonNegative(),
	}, "id", "center", "radiusMeters")
	return object(map[string]any{
		"point":  point(),
		"fences": map[string]any{"type": "array", "items": fence, "maxItems": 500},
	}, "point", "fences")
}

func routeSchema() map[string]any {
	return object(map[string]any{
		"path": map[string]any{"type": "array", "items": point(), "maxItems": 1000},
	}, "path")
}

func clockActionSchema() map[string]any {
	return object(map[string]any{
		"action":    map[string]any{"type": "string", "enum": []string{"clock_in", "clock_out"}},
		"latitude":  latitude(),
		"longitude": longitude(),
		"jobId":     str(100),
		"notes":     str(2000),
	}, "action", "latitude", "longitude")
}

func employeeSchema() map[string]any {
	return object(map[string]any{
		"name":       map[string]any{"type": "string", "minLength": 1, "maxLength": 200},
		"hourlyRate": nonNegative(),
		"role":       str(20),
	}, "name", "hourlyRate")
}

func estimateSchema() map[string]any {
	return object(map[string]any{
		"jobType":        map[string]any{"type": "string", "minLength": 1, "maxLength": 50},
		"squareFootage":  nonNegative(),
		"linearFootage":  nonNegative(),
		"numberOfStalls": count(),
		"coats":          nonNegative(),
		"hasOilSpots":    map[string]any{"type": "boolean"},
		"crackSeverity":  map[string]any{"type": "string", "enum": []string{"LIGHT", "MEDIUM", "HEAVY"}},
		"patchType":      map[string]any{"type": "string", "enum": []string{"HOT", "COLD"}},
		"jobAddress":     str(500),
		"jobLocation": object(map[string]any{
			"latitude":  latitude(),
			"longitude": longitude(),
		}, "latitude", "longitude"),
		"jobId": str(100),
	}, "jobType")
}

func awardXPSchema() map[string]any {
	return object(map[string]any{
		"amount": map[string]any{"type": "integer", "minimum": 1, "maximum": 1000000},
		"reason": str(200),
	}, "amount")
}

func jobCompletionSchema() map[string]any {
	return object(map[string]any{
		"totalCost":       nonNegative(),
		"rating":          map[string]any{"type": "integer", "minimum": 1, "maximum": 5},
		"completedOnTime": map[string]any{"type": "boolean"},
		"budgetUsed":      nonNegative(),
		"budgetTotal":     nonNegative(),
		"incidents":       count(),
	}, "totalCost")
}

func featureFlagsSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": map[string]any{"type": "boolean"},
	}
}

func listParametersSchema() map[string]any {
	return object(map[string]any{
		"limit":      map[string]any{"type": "integer", "minimum": 0, "maximum": 500},
		"employeeId": str(36),
	})
}
