// @title Vet Clinic Records API
// @version 1.0
// @description Dueños, mascotas, veterinarios e historial clínico.
// @BasePath /api
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
