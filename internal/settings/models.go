package settings

import "time"

// QRSettingKey holds the URL of the GCash QR image shown on payment screens.
const QRSettingKey = "gcash_qr"

// Setting is one key/value pair. Values are free-form: strings, numbers, or
// nested documents, whatever the frontend stores.
type Setting struct {
	Key       string      `bson:"key" json:"key"`
	Value     interface{} `bson:"value" json:"value"`
	UpdatedAt time.Time   `bson:"updatedAt" json:"updatedAt"`
}
