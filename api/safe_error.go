package api

import (
	"household/config"
)

// SafeErrorMessage release 模式下只返回 fallback
func SafeErrorMessage(err error, fallback string) string {
	return config.SafeErrorMessage(err, fallback)
}
