package config

// RecordFile is the install record written to the target directory.
const RecordFile = ".agent-library.yml"

// RecordVersion is the current install record format.
const RecordVersion = 1

// AppName names the settings directory and environment prefix.
const AppName = "agent-library"
