package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/theflywheel/dhash"
	"github.com/theflywheel/dhash/internal/logger"
)

func main() {
	log := logger.New(logger.WithLevel(slog.LevelDebug))

	tbl, err := dhash.New(dhash.WithLogger(log))
	if err != nil {
		log.Error("failed to create table", "error", err)
		os.Exit(1)
	}
	defer tbl.Destroy()

	fmt.Println("Table created successfully")

	// Insert some data
	langs := map[string]string{"js": "1995", "py": "1991", "C++": "1980"}
	for k, v := range langs {
		tbl.Insert(k, v)
	}
	fmt.Printf("Inserted %d languages\n", tbl.Size())

	for _, k := range []string{"js", "py", "C++", "go"} {
		if v, ok := tbl.Search(k); ok {
			fmt.Printf("%s => %s\n", k, v)
		} else {
			fmt.Printf("%s not found\n", k)
		}
	}

	// Update a value
	tbl.Insert("js", "1996")
	v, _ := tbl.Search("js")
	fmt.Printf("Updated js => %s\n", v)

	tbl.Delete("py")
	fmt.Printf("After delete: size=%d contains(py)=%t\n", tbl.Size(), tbl.Contains("py"))

	// Enough inserts to trigger a few debug logged resizes
	for i := 0; i < 500; i++ {
		tbl.Insert(fmt.Sprintf("key-%d", i), fmt.Sprint(i))
	}
	fmt.Printf("Stats: %+v\n", tbl.Stats())

	fmt.Println("Example completed successfully")
}
