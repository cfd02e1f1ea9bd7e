package constants

import (
	"github.com/go-playground/validator/v10"
)

type ContextKey string

const (
	PoolKey      ContextKey = "pool"
	TxKey        ContextKey = "tx"
	UserKey      ContextKey = "user"
	LoggerKey    ContextKey = "logger"
	ParamsKey    ContextKey = "params"
	RequestStart ContextKey = "requestStart"
)

var Validate = validator.New(validator.WithRequiredStructEnabled())
