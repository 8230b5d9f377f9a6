package models

// AdditionalDataEntry is the wire shape of one submitted additional-data field.
type AdditionalDataEntry struct {
	FieldName  string `json:"fieldName" validate:"required,max=100"`
	FieldType  string `json:"fieldType" validate:"required,max=50"`
	FieldValue string `json:"fieldValue" validate:"max=1000"`
}

// AddUpdateContractorRequest is the body of contractor create and update
// calls. The additional-data set always replaces the stored one in full.
type AddUpdateContractorRequest struct {
	Name           string                `json:"name" validate:"max=100"`
	Description    string                `json:"description" validate:"max=200"`
	UserID         uint                  `json:"userId"`
	AdditionalData []AdditionalDataEntry `json:"additionalData" validate:"dive"`
}

// RegisterRequest is the body of the register endpoint.
type RegisterRequest struct {
	UserName     string `json:"userName"`
	EmailAddress string `json:"emailAddress"`
	Password     string `json:"password"`
}

// LoginRequest is the body of the login endpoint.
type LoginRequest struct {
	EmailAddress string `json:"emailAddress"`
	Password     string `json:"password"`
}
