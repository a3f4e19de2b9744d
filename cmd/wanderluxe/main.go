// Command wanderluxe はwanderluxeのAPIサーバー、セッション掃除ワーカー、マイグレーションを起動する。
//
//	wanderluxe [serve|worker|migrate|healthcheck]
package main

import (
	"fmt"
	"os"

	"github.com/hitoshi/wanderluxe/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "wanderluxe: %v\n", err)
		os.Exit(1)
	}
}
