package portal

import (
	"time"

	"github.com/terralab/frp/pkg"
)

/* NOTIFICATION SCOPES ( Notification.NtfScope )
EITHER THE BROADCAST SCOPE "admin" OR A SINGLE USER'S ID */
const NOTIFY_SCOPE_ADMIN = "admin"

/*
NOTIFICATION - ONE ROW PER PORTAL EVENT A HUMAN SHOULD SEE

CREATED ALONGSIDE EVERY NEW DEVICE ALERT AND EVERY CONTACT FORM SUBMISSION
*/
type Notification struct {
	NtfID int64 `gorm:"unique; primaryKey" json:"ntf_id"`

	NtfScope string `gorm:"not null; index; varchar(36)" json:"ntf_scope"`
	NtfTitle string `gorm:"not null; varchar(100)" json:"ntf_title"`
	NtfBody  string `gorm:"varchar(512)" json:"ntf_body"`

	NtfTime int64 `gorm:"not null" json:"ntf_time"`
	NtfRead bool  `gorm:"default:false" json:"ntf_read"`
}

func WriteNotification(ntf *Notification) (err error) {
	ntf.NtfID = 0
	res := pkg.FRP.DB.Create(ntf)
	return res.Error
}

/* FIRE-AND-FORGET; CALLERS MUST NOT FAIL BECAUSE A NOTIFICATION COULD NOT BE WRITTEN */
func CreateNotification(scope, title, body string) (ntf Notification) {

	ntf = Notification{
		NtfScope: scope,
		NtfTitle: pkg.ValidateStringLength(title, 100),
		NtfBody:  pkg.ValidateStringLength(body, 512),
		NtfTime:  time.Now().UTC().UnixMilli(),
	}
	if err := WriteNotification(&ntf); err != nil {
		pkg.LogErr(err)
	}
	return
}

func GetNotifications(scope string, unreadOnly bool) (ntfs []Notification, err error) {
	qry := pkg.FRP.DB.Where("ntf_scope = ?", scope)
	if unreadOnly {
		qry = qry.Where("ntf_read = ?", false)
	}
	res := qry.Order("ntf_time DESC").Find(&ntfs)
	err = res.Error
	return
}

func MarkNotificationRead(ntfID int64) (err error) {
	res := pkg.FRP.DB.Model(&Notification{}).
		Where("ntf_id = ?", ntfID).
		Update("ntf_read", true)
	return res.Error
}
