package portal

import (
	"time"

	"github.com/terralab/frp/pkg"
)

/*
CONTACT MESSAGE - SUBMITTED FROM THE PUBLIC CONTACT FORM; NO ACCOUNT REQUIRED
*/
type ContactMessage struct {
	CMID int64 `gorm:"unique; primaryKey" json:"cm_id"`

	CMName    string `gorm:"not null; varchar(100)" json:"cm_name" validate:"required"`
	CMEmail   string `gorm:"not null; varchar(100)" json:"cm_email" validate:"required,email"`
	CMSubject string `gorm:"varchar(200)" json:"cm_subject"`
	CMBody    string `gorm:"not null; type:text" json:"cm_body" validate:"required"`

	CMTime    int64 `gorm:"not null" json:"cm_time"`
	CMHandled bool  `gorm:"default:false" json:"cm_handled"`
}

func WriteContactMessage(cm *ContactMessage) (err error) {
	cm.CMID = 0
	cm.CMTime = time.Now().UTC().UnixMilli()
	res := pkg.FRP.DB.Create(cm)
	return res.Error
}

func GetContactMessages(unhandledOnly bool) (cms []ContactMessage, err error) {
	qry := pkg.FRP.DB.Order("cm_time DESC")
	if unhandledOnly {
		qry = qry.Where("cm_handled = ?", false)
	}
	res := qry.Find(&cms)
	err = res.Error
	return
}

func MarkContactMessageHandled(cmID int64) (err error) {
	res := pkg.FRP.DB.Model(&ContactMessage{}).
		Where("cm_id = ?", cmID).
		Update("cm_handled", true)
	return res.Error
}
