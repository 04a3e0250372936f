package school

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/alama/core/user"
)

// InitValidators registers the struct level validations of this package.
func InitValidators(validate *validator.Validate) {
	validate.RegisterStructValidation(teacherStructValidation, NewTeacher{}, ChangePassword{}, passwordReset{})
}

// teacherStructValidation applies the password policy to teacher passwords.
func teacherStructValidation(sl validator.StructLevel) {
	switch v := sl.Current().Interface().(type) {
	case NewTeacher:
		user.ValidatePassword(sl, v.Password, "password", "Password", v.ID, v.Name, v.Email)
	case ChangePassword:
		user.ValidatePassword(sl, v.NewPassword, "new_password", "NewPassword")
	case passwordReset:
		user.ValidatePassword(sl, v.Password, "password", "Password", v.ID, v.Name, v.Email)
	}
}
