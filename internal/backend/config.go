package backend

// SessionTypes returns all valid session backends.
func SessionTypes() []SessionType {
	return []SessionType{SQLiteSession, MemorySession}
}

func SessionTypeStrings() []string {
	types := SessionTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}
