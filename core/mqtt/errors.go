package mqtt

import "errors"

// ErrPublish is returned when a run summary could not be delivered after retries.
var ErrPublish = errors.New("mqtt publish failed")
