package errprocess

import (
	"errors"
	"fmt"

	"chat_message_service/pkg/logger"
)

// Set set err info
func Set(errMsg string) error {
	logger.Log.Error(errMsg)
	return errors.New(errMsg)
}

// Wrap log the underlying error and wrap it with the given sentinel
func Wrap(sentinel, err error) error {
	logger.Log.Errorf(sentinel.Error()+":", err)
	return fmt.Errorf("%w: %v", sentinel, err)
}
