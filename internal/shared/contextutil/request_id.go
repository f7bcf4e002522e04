package contextutil

// GetKey didefinisikan jika middleware perlu tahu key mentahnya
func GetKey() string {
	return string(requestIDKey)
}
