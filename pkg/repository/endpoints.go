package repository

// Service endpoints, relative to the connection base URL.
const (
	itemsPath        = "/healthClinicalAcceleration/repository/items"
	typesPath        = "/healthClinicalAcceleration/types"
	authzPath        = "/healthClinicalAcceleration/authorizations"
	filesContentPath = "/healthClinicalAcceleration/repository/files/content"
	itemsBatchPath   = "/healthClinicalAcceleration/repository/items/batch"
	actionStatusPath = "/healthClinicalAcceleration/actionstatus"
)
