// file: internals/features/finance/fees/model/models.go
package model

// All = daftar model untuk AutoMigrate (urutan: parent dulu).
func All() []any {
	return []any{
		&Student{},
		&AcademicSession{},
		&FeeComponent{},
		&Scholarship{},
		&FeeTemplate{},
		&FeeTemplateItem{},
		&StudentFeeStructure{},
		&StudentFeeLineItem{},
		&StudentScholarship{},
		&FeeInstallment{},
	}
}
