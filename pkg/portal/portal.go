package portal

/* MODELS OWNED BY THIS PACKAGE; PASSED TO pkg.FRP.CreateFRPTables AT STARTUP */
func Models() []interface{} {
	return []interface{}{
		&Dataset{},
		&ContactMessage{},
		&Notification{},
	}
}
