package redis

import (
	"fmt"

	"github.com/ijo-project/ijo-backend/internal/model"
)

// Key prefix for all application data
const keyPrefix = "ijo"

// accountKey returns the Redis key for an Account
func accountKey(id model.AccountID) string {
	return fmt.Sprintf("%s:account:%s", keyPrefix, id)
}

// emailIndexKey returns the Redis key for the email -> account_id index
func emailIndexKey(email string) string {
	return fmt.Sprintf("%s:idx:email:%s", keyPrefix, model.NormalizeEmail(email))
}

// accountsIndexKey returns the Redis key for the SET of all account ids
func accountsIndexKey() string {
	return fmt.Sprintf("%s:idx:accounts", keyPrefix)
}

// itemKey returns the Redis key for an Item
func itemKey(id model.ItemID) string {
	return fmt.Sprintf("%s:item:%s", keyPrefix, id)
}

// contentKey returns the Redis key for the content HASH (field per entry key)
func contentKey() string {
	return fmt.Sprintf("%s:content", keyPrefix)
}
