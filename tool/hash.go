package tool

import (
	"fmt"

	"github.com/google/uuid"
)

func GenerateRandomUUID() string {
	return uuid.New().String()
}

// PreviewID is the display key of a file: name-size-lastModified.
// Two picks of the same file collide; callers must not treat it as unique.
func PreviewID(name string, size, lastModified int64) string {
	return fmt.Sprintf("%s-%d-%d", name, size, lastModified)
}
