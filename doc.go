/*
Package alama is a school gradebook: teachers record the scores of their students per subject,
students and teachers follow averages, goals and trends per subject.

	apps/api    HTTP API (echo)
	apps/admin  admin CLI: migrations, admins, password resets
	core        domain packages and their services
	services    email & logging backends
	storage     postgres (sqlx) and in-memory repositories
*/
package alama
