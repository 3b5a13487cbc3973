package domain

import "errors"

// ErrWrongPassword indicates the wrong admin password.
var ErrWrongPassword = errors.New("wrong password")

// AdminUsername is the subject of session tokens; the ledger has one user.
const AdminUsername = "admin"
