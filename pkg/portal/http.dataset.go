package portal

import (
	"github.com/gofiber/fiber/v2"

	"github.com/terralab/frp/pkg"
)

func InitializeDatasetRoutes(app, api *fiber.App) {
	api.Route("/dataset", func(router fiber.Router) {

		/* PUBLIC; ANONYMOUS CALLERS SEE PUBLIC DATASETS ONLY */
		router.Get("/list", HandleGetDatasetList)
		router.Get("/download", HandleDownloadDataset)

		/* OPERATORS PUBLISH AND CURATE; ONLY ADMINISTRATORS REMOVE */
		router.Post("/create", pkg.FRPAuth, HandleCreateDataset)
		router.Post("/update", pkg.FRPAuth, HandleUpdateDataset)
		router.Post("/delete", pkg.FRPAuth, HandleDeleteDataset)
	})
}

/* TRUE WHEN THE CALLER PRESENTED A VALID TOKEN; PUBLIC ROUTES RUN WITHOUT FRPAuth */
func memberAccess(c *fiber.Ctx) bool {

	authorization := c.Get("Authorization")
	if len(authorization) <= len("Bearer ") {
		return false
	}
	_, err := pkg.GetClaimsFromTokenString(authorization[len("Bearer "):])
	return err == nil
}

func HandleGetDatasetList(c *fiber.Ctx) (err error) {

	dss, err := GetDatasetList(memberAccess(c))
	if err != nil {
		pkg.LogErr(err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "fail",
			"message": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "success",
		"data":   fiber.Map{"datasets": dss},
	})
}

/* ?id=...; BUMPS THE DOWNLOAD COUNT AND RETURNS THE FILE URL */
func HandleDownloadDataset(c *fiber.Ctx) (err error) {

	url, err := RecordDatasetDownload(int64(c.QueryInt("id")), memberAccess(c))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":  "fail",
			"message": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "success",
		"data":   fiber.Map{"url": url},
	})
}

/* OPERATOR AND ABOVE */
func HandleCreateDataset(c *fiber.Ctx) (err error) {

	/* CHECK USER PERMISSION */
	if !pkg.UserRole_Operator(c.Locals("role")) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"status":  "fail",
			"message": "You must be an operator to publish datasets",
		})
	}

	/* PARSE AND VALIDATE REQUEST DATA */
	ds := Dataset{DSAccess: DATASET_ACCESS_PUBLIC}
	if err = c.BodyParser(&ds); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "fail",
			"message": err.Error(),
		})
	}
	if err = ds.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "fail",
			"message": err.Error(),
		})
	}

	ds.DSOwnerID, _ = c.Locals("sub").(string)
	if err = WriteDataset(&ds); err != nil {
		pkg.LogErr(err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "fail",
			"message": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status": "success",
		"data":   fiber.Map{"dataset": ds},
	})
}

/* OPERATOR AND ABOVE */
func HandleUpdateDataset(c *fiber.Ctx) (err error) {

	/* CHECK USER PERMISSION */
	if !pkg.UserRole_Operator(c.Locals("role")) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"status":  "fail",
			"message": "You must be an operator to update datasets",
		})
	}

	/* PARSE AND VALIDATE REQUEST DATA */
	ds := Dataset{}
	if err = c.BodyParser(&ds); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "fail",
			"message": err.Error(),
		})
	}
	if err = ds.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "fail",
			"message": err.Error(),
		})
	}

	if _, err = GetDatasetByID(ds.DSID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":  "fail",
			"message": "dataset not found",
		})
	}

	if err = UpdateDataset(&ds); err != nil {
		pkg.LogErr(err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "fail",
			"message": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "success",
		"data":   fiber.Map{"dataset": ds},
	})
}

/* ADMIN ONLY; REMOVES THE METADATA RECORD, NOT THE EXTERNAL FILE */
func HandleDeleteDataset(c *fiber.Ctx) (err error) {

	/* CHECK USER PERMISSION */
	if !pkg.UserRole_Admin(c.Locals("role")) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"status":  "fail",
			"message": "You must be an administrator to remove datasets",
		})
	}

	ds := Dataset{}
	if err = c.BodyParser(&ds); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "fail",
			"message": err.Error(),
		})
	}

	if _, err = GetDatasetByID(ds.DSID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":  "fail",
			"message": "dataset not found",
		})
	}

	if err = DeleteDataset(ds.DSID); err != nil {
		pkg.LogErr(err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "fail",
			"message": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"message": "dataset removed",
	})
}
