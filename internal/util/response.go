package util

type Envelope map[string]any

func Error(message string) Envelope {
	return Envelope{"success": false, "error": message}
}

func Data(value any) Envelope {
	return Envelope{"success": true, "data": value}
}
