package portal

import (
	"fmt"
	"time"

	"github.com/terralab/frp/pkg"
)

/* DATASET ACCESS LEVELS ( Dataset.DSAccess ) */
const DATASET_ACCESS_PUBLIC = "public"
const DATASET_ACCESS_MEMBERS = "members"

/*
DATASET - A PUBLISHED RESEARCH DATA PRODUCT

FILES LIVE OUTSIDE THE FRP; THE PORTAL TRACKS METADATA AND DOWNLOAD COUNTS
*/
type Dataset struct {
	DSID int64 `gorm:"unique; primaryKey" json:"ds_id"`

	DSTitle      string `gorm:"not null; varchar(200)" json:"ds_title"`
	DSSlug       string `gorm:"varchar(200); index" json:"ds_slug"`
	DSDesc       string `gorm:"type:text" json:"ds_desc"`
	DSDiscipline string `gorm:"varchar(100)" json:"ds_discipline"`
	DSLicense    string `gorm:"varchar(100)" json:"ds_license"`
	DSDOI        string `gorm:"varchar(100)" json:"ds_doi"`
	DSAccess     string `gorm:"not null; varchar(10); default:'public'" json:"ds_access"`
	DSURL        string `gorm:"varchar(512)" json:"ds_url"`

	DSOwnerID   string `gorm:"varchar(36)" json:"ds_owner_id"`
	DSCreated   int64  `gorm:"not null" json:"ds_created"`
	DSUpdated   int64  `json:"ds_updated"`
	DSDownloads int64  `gorm:"default:0" json:"ds_downloads"`
}

func (ds *Dataset) Validate() (err error) {
	if ds.DSTitle == "" {
		return fmt.Errorf("title is required")
	}
	if ds.DSAccess != DATASET_ACCESS_PUBLIC && ds.DSAccess != DATASET_ACCESS_MEMBERS {
		return fmt.Errorf("access must be %q or %q", DATASET_ACCESS_PUBLIC, DATASET_ACCESS_MEMBERS)
	}
	return
}

func WriteDataset(ds *Dataset) (err error) {
	ds.DSID = 0
	ds.DSCreated = time.Now().UTC().UnixMilli()
	ds.DSUpdated = ds.DSCreated
	res := pkg.FRP.DB.Create(ds)
	return res.Error
}

func UpdateDataset(ds *Dataset) (err error) {
	res := pkg.FRP.DB.Model(&Dataset{}).
		Where("ds_id = ?", ds.DSID).
		Updates(map[string]interface{}{
			"ds_title":      ds.DSTitle,
			"ds_slug":       ds.DSSlug,
			"ds_desc":       ds.DSDesc,
			"ds_discipline": ds.DSDiscipline,
			"ds_license":    ds.DSLicense,
			"ds_doi":        ds.DSDOI,
			"ds_access":     ds.DSAccess,
			"ds_url":        ds.DSURL,
			"ds_updated":    time.Now().UTC().UnixMilli(),
		})
	return res.Error
}

func DeleteDataset(dsID int64) (err error) {
	res := pkg.FRP.DB.Delete(&Dataset{}, "ds_id = ?", dsID)
	return res.Error
}

func GetDatasetByID(dsID int64) (ds Dataset, err error) {
	res := pkg.FRP.DB.First(&ds, "ds_id = ?", dsID)
	err = res.Error
	return
}

/* ANONYMOUS CALLERS SEE PUBLIC DATASETS ONLY */
func GetDatasetList(memberAccess bool) (dss []Dataset, err error) {
	qry := pkg.FRP.DB.Order("ds_created DESC")
	if !memberAccess {
		qry = qry.Where("ds_access = ?", DATASET_ACCESS_PUBLIC)
	}
	res := qry.Find(&dss)
	err = res.Error
	return
}

/* BUMP THE DOWNLOAD COUNT AND RETURN THE FILE URL */
func RecordDatasetDownload(dsID int64, memberAccess bool) (url string, err error) {

	ds, err := GetDatasetByID(dsID)
	if err != nil {
		return "", fmt.Errorf("dataset %d not found", dsID)
	}

	if ds.DSAccess == DATASET_ACCESS_MEMBERS && !memberAccess {
		return "", fmt.Errorf("dataset %d requires a portal account", dsID)
	}

	res := pkg.FRP.DB.Model(&Dataset{}).
		Where("ds_id = ?", dsID).
		Update("ds_downloads", ds.DSDownloads+1)
	if res.Error != nil {
		return "", res.Error
	}
	return ds.DSURL, nil
}
