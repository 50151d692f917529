// @title           PhD Admissions API
// @version         1.0
// @description     Registration, application, document and payment API for PhD admissions.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import "admissions_backend/internal/app"

func main() {
	app.Run()
}
