package repository

import (
	"gorm.io/gorm"

	"ideomatch/backend/internal/changefeed"
	"ideomatch/backend/internal/models"
)

// RegisterChangeFeed publishes committed writes on the messages table to
// pub. The callbacks run after gorm's own commit step so subscribers never
// observe rows that are not yet visible to other connections.
func RegisterChangeFeed(db *gorm.DB, pub changefeed.Publisher) error {
	table := messagesTable(db)

	cb := db.Callback()
	if err := cb.Create().After("gorm:commit_or_rollback_transaction").
		Register("changefeed:create", publishChange(pub, table, changefeed.KindInsert)); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:commit_or_rollback_transaction").
		Register("changefeed:update", publishChange(pub, table, changefeed.KindUpdate)); err != nil {
		return err
	}
	return cb.Delete().After("gorm:commit_or_rollback_transaction").
		Register("changefeed:delete", publishChange(pub, table, changefeed.KindRemove))
}

func messagesTable(db *gorm.DB) string {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(&models.Message{}); err != nil || stmt.Schema == nil {
		return "messages"
	}
	return stmt.Schema.Table
}

func publishChange(pub changefeed.Publisher, table string, kind changefeed.Kind) func(*gorm.DB) {
	return func(db *gorm.DB) {
		if db.Error != nil || db.Statement.Schema == nil || db.Statement.Schema.Table != table {
			return
		}
		if db.RowsAffected == 0 {
			return
		}
		k := kind
		if k == changefeed.KindRemove && !db.Statement.Unscoped &&
			db.Statement.Schema.LookUpField("DeletedAt") != nil {
			k = changefeed.KindSoftRemove
		}
		pub.Publish(changefeed.Event{
			Kind:    k,
			Entity:  changefeed.EntityMessage,
			Payload: db.Statement.Dest,
		})
	}
}
