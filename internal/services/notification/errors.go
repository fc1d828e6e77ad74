package notification

import "errors"

var errNoRecipient = errors.New("member has no phone number")
