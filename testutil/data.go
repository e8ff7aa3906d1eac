package testutil

import "fmt"

// Canned protocol lines for stream scripts. Kept as raw JSON so tests read
// like wire captures.

// CreateSurfaceLine returns a createSurface message for the given surface.
func CreateSurfaceLine(surfaceID string) string {
	return fmt.Sprintf(`{"type":"createSurface","surfaceId":%q,"catalogId":"standard"}`, surfaceID)
}

// RootComponentLine returns an updateComponents message installing a minimal
// root component, which flips the surface ready.
func RootComponentLine(surfaceID string) string {
	return fmt.Sprintf(`{"type":"updateComponents","surfaceId":%q,"components":[{"id":"root","component":"Column","children":[]}]}`, surfaceID)
}

// DataModelLine returns an updateDataModel message setting value at path.
func DataModelLine(surfaceID, path, valueJSON string) string {
	return fmt.Sprintf(`{"type":"updateDataModel","surfaceId":%q,"path":%q,"value":%s}`, surfaceID, path, valueJSON)
}

// DeleteSurfaceLine returns a deleteSurface message.
func DeleteSurfaceLine(surfaceID string) string {
	return fmt.Sprintf(`{"type":"deleteSurface","surfaceId":%q}`, surfaceID)
}

// ErrorLine returns an agent error message scoped to a component path.
func ErrorLine(surfaceID, path, message string) string {
	return fmt.Sprintf(`{"type":"error","surfaceId":%q,"path":%q,"message":%q}`, surfaceID, path, message)
}
