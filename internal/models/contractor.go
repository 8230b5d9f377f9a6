package models

// Contractor represents a service provider owned by exactly one user.
// Sharing a contractor between users was considered and left out for now.
type Contractor struct {
	ID             uint             `json:"id" gorm:"primaryKey"`
	Name           string           `json:"name" gorm:"type:varchar(100)" validate:"max=100"`
	Description    string           `json:"description" gorm:"type:varchar(200)" validate:"max=200"`
	UserID         uint             `json:"userId"`
	AdditionalData []AdditionalData `json:"additionalData" gorm:"foreignKey:ContractorID;constraint:OnDelete:CASCADE"`
}

// AdditionalData is a user-defined (name, type, value) field attached to a
// contractor. The value is always stored as text and interpreted per its
// declared type. The composite storage key is case-sensitive; the
// case-insensitive uniqueness of field names per contractor is enforced in
// the contractor service, not here.
type AdditionalData struct {
	ContractorID uint   `json:"contractorId" gorm:"primaryKey;autoIncrement:false"`
	FieldName    string `json:"fieldName" gorm:"primaryKey;type:varchar(100)"`
	FieldType    string `json:"fieldType" gorm:"type:varchar(50)"`
	FieldValue   string `json:"fieldValue" gorm:"type:varchar(1000)"`
}
