package model

// Student 学生表 — 对应 students
type Student struct {
	StudentID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"student_id"`
	StudentNumber string `gorm:"type:varchar(10);not null;uniqueIndex"          json:"student_number"`
	FirstName     string `gorm:"type:varchar(50);not null"                      json:"first_name"`
	LastName      string `gorm:"type:varchar(50);not null"                      json:"last_name"`
	Email         string `gorm:"type:varchar(100);not null;uniqueIndex"         json:"email"`
	DegreeProgram string `gorm:"type:varchar(100)"                              json:"degree_program,omitempty"`
	BaseModel

	// 关联
	Modules []StudentModule `gorm:"foreignKey:StudentID" json:"modules,omitempty"`
}

func (Student) TableName() string { return "students" }

// FullName 展示用全名（不落库，按需拼接）
func (s *Student) FullName() string { return s.FirstName + " " + s.LastName }

// StudentModule 学生-课程选课桥表 — 对应 student_modules
type StudentModule struct {
	ID        string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	StudentID string `gorm:"type:uuid;not null;uniqueIndex:uq_student_module" json:"student_id"`
	ModuleID  string `gorm:"type:uuid;not null;uniqueIndex:uq_student_module" json:"module_id"`

	Student *Student `gorm:"foreignKey:StudentID;references:StudentID" json:"student,omitempty"`
	Module  *Module  `gorm:"foreignKey:ModuleID;references:ModuleID"   json:"module,omitempty"`
}

func (StudentModule) TableName() string { return "student_modules" }
