package config

// DefaultDatabasePath is the default path for the main application database
const DefaultDatabasePath = "./shelflift.db"
