package utils

import "github.com/google/uuid"

// GenerateID returns a random UUID string.
func GenerateID() string {
	return uuid.New().String()
}

// GenerateTreasureID returns a treasure identifier in the form the mobile
// clients expect ("treasure_" + UUID).
func GenerateTreasureID() string {
	return "treasure_" + uuid.New().String()
}

// IsUUID checks if the string is a valid UUID.
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
