package mysql

// modifyDate picks the fingerprint column for tables and views. InnoDB
// updates UPDATE_TIME on every write and resets it on restart, so only DDL
// (CREATE_TIME) counts for it.
const modifyDate = `CASE WHEN ENGINE = 'InnoDB' THEN CREATE_TIME ELSE COALESCE(UPDATE_TIME, CREATE_TIME) END`

var templates = map[string]string{
	"tables": `
		SELECT TABLE_NAME AS pureName,
		       TABLE_ROWS AS tableRowCount,
		       ` + modifyDate + ` AS modifyDate
		FROM information_schema.TABLES
		WHERE TABLE_SCHEMA = '#DATABASE#'
		  AND TABLE_TYPE   = 'BASE TABLE'
		ORDER BY TABLE_NAME`,

	"columns": `
		SELECT TABLE_NAME               AS pureName,
		       COLUMN_NAME              AS columnName,
		       IS_NULLABLE              AS isNullable,
		       DATA_TYPE                AS dataType,
		       CHARACTER_MAXIMUM_LENGTH AS charMaxLength,
		       NUMERIC_PRECISION        AS numericPrecision,
		       NUMERIC_SCALE            AS numericScale,
		       COLUMN_DEFAULT           AS defaultValue,
		       COLUMN_COMMENT           AS columnComment,
		       COLUMN_TYPE              AS columnType,
		       EXTRA                    AS extra
		FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = '#DATABASE#'
		ORDER BY TABLE_NAME, ORDINAL_POSITION`,

	"primaryKeys": `
		SELECT kcu.CONSTRAINT_NAME AS constraintName,
		       kcu.TABLE_NAME      AS pureName,
		       kcu.COLUMN_NAME     AS columnName
		FROM information_schema.KEY_COLUMN_USAGE kcu
		JOIN information_schema.TABLE_CONSTRAINTS tc
			ON  tc.CONSTRAINT_SCHEMA = kcu.CONSTRAINT_SCHEMA
			AND tc.TABLE_NAME        = kcu.TABLE_NAME
			AND tc.CONSTRAINT_NAME   = kcu.CONSTRAINT_NAME
		WHERE kcu.TABLE_SCHEMA    = '#DATABASE#'
		  AND tc.CONSTRAINT_TYPE  = 'PRIMARY KEY'
		ORDER BY kcu.TABLE_NAME, kcu.ORDINAL_POSITION`,

	"foreignKeys": `
		SELECT kcu.CONSTRAINT_NAME        AS constraintName,
		       kcu.TABLE_NAME             AS pureName,
		       kcu.COLUMN_NAME            AS columnName,
		       kcu.REFERENCED_TABLE_NAME  AS refTableName,
		       kcu.REFERENCED_COLUMN_NAME AS refColumnName,
		       rc.UPDATE_RULE             AS updateAction,
		       rc.DELETE_RULE             AS deleteAction
		FROM information_schema.KEY_COLUMN_USAGE kcu
		JOIN information_schema.REFERENTIAL_CONSTRAINTS rc
			ON  rc.CONSTRAINT_SCHEMA = kcu.CONSTRAINT_SCHEMA
			AND rc.CONSTRAINT_NAME   = kcu.CONSTRAINT_NAME
			AND rc.TABLE_NAME        = kcu.TABLE_NAME
		WHERE kcu.TABLE_SCHEMA          = '#DATABASE#'
		  AND kcu.REFERENCED_TABLE_NAME IS NOT NULL
		ORDER BY kcu.TABLE_NAME, kcu.CONSTRAINT_NAME, kcu.ORDINAL_POSITION`,

	"views": `
		SELECT TABLE_NAME AS pureName,
		       ` + modifyDate + ` AS modifyDate
		FROM information_schema.TABLES
		WHERE TABLE_SCHEMA = '#DATABASE#'
		  AND TABLE_TYPE   = 'VIEW'
		ORDER BY TABLE_NAME`,

	"programmables": `
		SELECT ROUTINE_NAME       AS pureName,
		       ROUTINE_TYPE       AS objectType,
		       LAST_ALTERED       AS modifyDate,
		       DATA_TYPE          AS returnDataType,
		       ROUTINE_DEFINITION AS routineDefinition,
		       IS_DETERMINISTIC   AS isDeterministic
		FROM information_schema.ROUTINES
		WHERE ROUTINE_SCHEMA = '#DATABASE#'
		  AND ROUTINE_TYPE IN ('PROCEDURE', 'FUNCTION')
		ORDER BY ROUTINE_NAME`,

	"viewTexts": `
		SELECT TABLE_NAME      AS pureName,
		       VIEW_DEFINITION AS viewDefinition
		FROM information_schema.VIEWS
		WHERE TABLE_SCHEMA = '#DATABASE#'`,

	"indexes": `
		SELECT INDEX_NAME  AS constraintName,
		       TABLE_NAME  AS tableName,
		       COLUMN_NAME AS columnName,
		       INDEX_TYPE  AS indexType,
		       NON_UNIQUE  AS nonUnique
		FROM information_schema.STATISTICS
		WHERE TABLE_SCHEMA = '#DATABASE#'
		  AND INDEX_NAME  <> 'PRIMARY'
		ORDER BY TABLE_NAME, INDEX_NAME, SEQ_IN_INDEX`,

	"uniqueNames": `
		SELECT CONSTRAINT_NAME AS constraintName
		FROM information_schema.TABLE_CONSTRAINTS
		WHERE CONSTRAINT_SCHEMA = '#DATABASE#'
		  AND CONSTRAINT_TYPE   = 'UNIQUE'`,

	"tableModifications": `
		SELECT TABLE_NAME AS pureName,
		       TABLE_TYPE AS objectType,
		       TABLE_ROWS AS tableRowCount,
		       ` + modifyDate + ` AS modifyDate
		FROM information_schema.TABLES
		WHERE TABLE_SCHEMA = '#DATABASE#'
		  AND TABLE_TYPE IN ('BASE TABLE', 'VIEW')`,

	"procedureModifications": `SHOW PROCEDURE STATUS WHERE Db = '#DATABASE#'`,

	"functionModifications": `SHOW FUNCTION STATUS WHERE Db = '#DATABASE#'`,
}
