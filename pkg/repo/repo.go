package repo

import (
	"gorm.io/gorm"
)

type IRepo interface {
	Trade() ITrade
	OrderEvent() IOrderEvent
}

type Repo struct {
	journalDB *gorm.DB
}

func NewRepo(journalDB *gorm.DB) IRepo {
	return &Repo{
		journalDB: journalDB,
	}
}

func (r *Repo) Trade() ITrade {
	return NewTradeSQLRepo(r.journalDB)
}

func (r *Repo) OrderEvent() IOrderEvent {
	return NewOrderEventSQLRepo(r.journalDB)
}
