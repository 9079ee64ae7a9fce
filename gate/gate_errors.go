package gate

import "errors"

var errNilSessions = errors.New("[NewGate] session reader is required")
