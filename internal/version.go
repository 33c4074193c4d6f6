package internal

// Version is the decktranslate release version.
const Version = "0.3.0"
