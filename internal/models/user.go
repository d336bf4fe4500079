package models

// StudyBudget holds per-weekday study minutes read from the users table.
type StudyBudget struct {
	UserID int64 `db:"id" json:"user_id"`
	Mon    int   `db:"study_time_mon" json:"mon"`
	Tue    int   `db:"study_time_tue" json:"tue"`
	Wed    int   `db:"study_time_wed" json:"wed"`
	Thu    int   `db:"study_time_thu" json:"thu"`
	Fri    int   `db:"study_time_fri" json:"fri"`
	Sat    int   `db:"study_time_sat" json:"sat"`
	Sun    int   `db:"study_time_sun" json:"sun"`
}
