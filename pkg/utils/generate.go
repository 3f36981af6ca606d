package utils

import (
	"strings"

	"github.com/google/uuid"
)

// callbackNamespace scopes name-based ids derived from gateway callbacks.
var callbackNamespace = uuid.MustParse("6f1c2a8e-4b0d-5e7a-9c3f-2d8b1e4a7c60")

func GenerateUUIDString() string {
	return uuid.New().String()
}

// CallbackKey derives the dedupe key recorded on a booking for one gateway callback.
// The same (record, bill, state) triple always yields the same key.
func CallbackKey(recordID, billID, state string) string {
	name := strings.Join([]string{recordID, billID, state}, "|")
	return uuid.NewSHA1(callbackNamespace, []byte(name)).String()
}

// NotificationID derives a stable notification id from a dedupe key and a recipient slot,
// so retried deliveries write the same notification document.
func NotificationID(key, slot string) string {
	return uuid.NewSHA1(callbackNamespace, []byte(key+"#"+slot)).String()
}
