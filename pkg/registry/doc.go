/*
Package registry stores fitted markov chains under a name in a SQL database.

A model is kept as its vertex table plus one row per non-zero transition count,
so sparse chains stay small. Models can be exported to and imported from JSON.

The caller opens the database with a driver of its choice and runs SetupSchema
once before calling NewRegistry:

	db, err := sql.Open("sqlite", "models.db")
	if err != nil {
		// handle error
	}
	if err = registry.SetupSchema(db); err != nil {
		// handle error
	}
	reg, err := registry.NewRegistry(db)
*/
package registry
