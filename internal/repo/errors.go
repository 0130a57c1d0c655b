package repo

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/parkashmi09/entryManagementbackend/internal/domain"
)

// translate gorm/driver 错误归一化为 domain 哨兵错误
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case isDupKey(err):
		return domain.ErrDuplicateKey
	}
	return err
}

// isDupKey 不依赖 gorm.ErrDuplicatedKey，避免驱动/版本差异导致漏判；
// 唯一索引是 (owner_id, sr_no) 与 email 唯一性的最终仲裁，这里只负责把
// 驱动报错翻译成统一的冲突信号
func isDupKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation") ||
		strings.Contains(msg, "duplicate key")
}
