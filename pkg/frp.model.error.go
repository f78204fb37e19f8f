/* Field Research Portal (FRP) is a component of the TerraLab Research Data Platform.
License:

	[PROPER LEGALESE HERE...]

	INTERIM LICENSE DESCRIPTION:
	In spirit, this license:
	1. Allows <Third Party> to use, modify, and / or distribute this software in perpetuity so long as <Third Party> understands:
		a. The software is provided as is without guarantee of additional support from TerraLab in any form.
		b. The software is provided as is without guarantee of exclusivity.

	2. Prohibits <Third Party> from taking any action which might interfere with TerraLab's right to use, modify and / or distribute this software in perpetuity.
*/

package pkg

import (
	"encoding/json"
	"time"
)

/*
PERSISTED SERVER-SIDE FAULT RECORD

FAULTS ARE LOGGED AND SURFACED TO THE CALLER; THEY ARE ALSO KEPT HERE SO
FIELD TECHNICIANS CAN REVIEW WHAT A DEVICE WAS DOING WHEN A CALL FAILED
*/
type FRPError struct {
	FRPErrID    int64  `gorm:"unique; primaryKey" json:"frp_err_id"`
	FRPErrTime  int64  `gorm:"not null" json:"frp_err_time"`
	FRPErrMsg   string `gorm:"not null" json:"frp_err_msg"`
	FRPErrJson  string `json:"frp_err_json"` // JSON OF THE OBJECT ASSOCIATED WITH THE ERROR, IF ANY
	FRPErrDevID int64  `json:"frp_err_dev_id"`
}

func WriteFRPError(frp_err FRPError) (err error) {
	frp_err.FRPErrID = 0
	res := FRP.DB.Create(&frp_err)
	return res.Error
}

type ObjError struct {
	Msg string `json:"msg"`
}

/* LOG A FAULT AGAINST A DEVICE, WITH THE OFFENDING OBJECT AS JSON CONTEXT */
func MakeFRPError(devID int64, msg string, obj interface{}) (frp_err FRPError, err error) {

	t := time.Now().UTC().UnixMilli()

	js, err := ModelToJSONString(obj)
	if err != nil {
		LogErr(err)
		b, _ := json.Marshal(&ObjError{Msg: "Model could not be converted to json string."})
		js = string(b)
	}

	frp_err = FRPError{
		FRPErrTime:  t,
		FRPErrMsg:   msg,
		FRPErrJson:  js,
		FRPErrDevID: devID,
	}

	err = WriteFRPError(frp_err)

	return
}
