package commons

import "errors"

var ErrRecordNotFound = errors.New("Record not found")
var ErrInvalidAmount = errors.New("Invalid amount")
var ErrInsufficientBalance = errors.New("Insufficient balance")
var ErrStorageConflict = errors.New("Storage conflict")
