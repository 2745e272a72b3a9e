// Package all registers every built-in source backend. Import it for side
// effects:
//
//	import _ "tablestat/internal/source/all"
//
// after which source.Open accepts the kinds csv, arrow, parquet, sqlite,
// postgres, mssql and mysql.
package all

import (
	_ "tablestat/internal/source/arrowipc"
	_ "tablestat/internal/source/csv"
	_ "tablestat/internal/source/mssql"
	_ "tablestat/internal/source/mysql"
	_ "tablestat/internal/source/postgres"
	_ "tablestat/internal/source/sqlite"
)
