package factory

// =============================================================================
// SAMPLE FIXTURES
// =============================================================================

// SampleNursingHomeJSON is a 100-bed special nursing home with a complete
// career ladder, wage tables for every position and a tier I plan.
func SampleNursingHomeJSON() string {
	return `{
  "provider": {
    "name": "社会福祉法人 さくら会",
    "corporate_number": "1234567890123",
    "address": "東京都世田谷区桜新町1-2-3",
    "phone": "03-1234-5678"
  },
  "facilities": [{
    "key": "sakura-no-sato",
    "name": "特別養護老人ホーム さくらの里",
    "service_type": "special_nursing_home",
    "facility_number": "1371200001",
    "address": "東京都世田谷区桜新町2-3-4",
    "phone": "03-1234-5679",
    "capacity": 100,
    "staff_count": 15,
    "positions": [
      {"key": "director", "job_category": "admin", "name": "施設長", "level": 5,
       "required_experience_months": 180, "job_description": "施設の運営管理全般",
       "wage_table": {"base_salary_start": 450000, "step_raise_amount": 10000, "max_steps": 15, "position_allowance": 50000}},
      {"key": "deputy", "job_category": "admin", "name": "副施設長", "level": 4,
       "required_experience_months": 120, "job_description": "施設長の補佐",
       "wage_table": {"base_salary_start": 350000, "step_raise_amount": 7000, "max_steps": 15, "position_allowance": 30000}},
      {"key": "floor-leader", "job_category": "care", "name": "フロアリーダー", "level": 3,
       "required_experience_months": 60, "required_qualifications": "介護福祉士",
       "wage_table": {"base_salary_start": 270000, "step_raise_amount": 5000, "qualification_allowance": 10000, "position_allowance": 20000}},
      {"key": "chief-care", "job_category": "care", "name": "主任介護職員", "level": 2,
       "required_experience_months": 36, "required_qualifications": "介護福祉士",
       "wage_table": {"base_salary_start": 220000, "step_raise_amount": 4000, "qualification_allowance": 10000, "position_allowance": 10000}},
      {"key": "care", "job_category": "care", "name": "介護職員", "level": 1,
       "wage_table": {"base_salary_start": 180000, "step_raise_amount": 3000, "qualification_allowance": 10000}},
      {"key": "head-nurse", "job_category": "nursing", "name": "看護師長", "level": 3,
       "required_experience_months": 84,
       "wage_table": {"base_salary_start": 300000, "step_raise_amount": 6000, "position_allowance": 20000}},
      {"key": "nurse", "job_category": "nursing", "name": "看護師", "level": 1,
       "wage_table": {"base_salary_start": 240000, "step_raise_amount": 4000}},
      {"key": "chief-counselor", "job_category": "support", "name": "主任生活相談員", "level": 2,
       "required_experience_months": 60,
       "wage_table": {"base_salary_start": 250000, "step_raise_amount": 5000, "position_allowance": 10000}},
      {"key": "counselor", "job_category": "support", "name": "生活相談員", "level": 1,
       "wage_table": {"base_salary_start": 200000, "step_raise_amount": 4000}}
    ],
    "staff": [
      {"staff_number": "S001", "name": "山田 次郎", "position": "director", "step": 8, "hire_date": "2005-04-01",
       "qualifications": ["社会福祉士"], "latest_evaluation_score": "4.5", "latest_evaluation_date": "2025-03-31"},
      {"staff_number": "S002", "name": "佐藤 花子", "position": "deputy", "step": 6, "hire_date": "2010-04-01",
       "qualifications": ["社会福祉士"], "latest_evaluation_score": "4.2", "latest_evaluation_date": "2025-03-31"},
      {"staff_number": "S003", "name": "鈴木 一郎", "position": "floor-leader", "step": 5, "hire_date": "2015-04-01",
       "qualifications": ["介護福祉士"], "latest_evaluation_score": "4.0", "latest_evaluation_date": "2025-03-31"},
      {"staff_number": "S004", "name": "田中 美咲", "position": "floor-leader", "step": 4, "hire_date": "2016-04-01",
       "qualifications": ["介護福祉士"], "latest_evaluation_score": "3.8", "latest_evaluation_date": "2025-03-31"},
      {"staff_number": "S005", "name": "高橋 健太", "position": "chief-care", "step": 3, "hire_date": "2018-04-01",
       "qualifications": ["介護福祉士"], "latest_evaluation_score": "3.9", "latest_evaluation_date": "2025-03-31"},
      {"staff_number": "S006", "name": "伊藤 さくら", "position": "chief-care", "step": 2, "hire_date": "2019-04-01",
       "qualifications": ["介護福祉士"], "latest_evaluation_score": "3.5", "latest_evaluation_date": "2025-03-31"},
      {"staff_number": "S007", "name": "渡辺 大輔", "position": "care", "step": 5, "hire_date": "2021-04-01",
       "qualifications": ["介護福祉士"], "latest_evaluation_score": "3.6", "latest_evaluation_date": "2025-03-31"},
      {"staff_number": "S008", "name": "山本 愛", "position": "care", "step": 3, "hire_date": "2022-04-01",
       "qualifications": ["介護職員初任者研修"], "latest_evaluation_score": "3.2", "latest_evaluation_date": "2025-03-31"},
      {"staff_number": "S009", "name": "中村 優希", "position": "care", "step": 2, "hire_date": "2023-04-01",
       "employment_status": "part_time", "qualifications": ["介護職員初任者研修"]},
      {"staff_number": "S010", "name": "小林 翔太", "position": "care", "step": 1, "hire_date": "2024-04-01"},
      {"staff_number": "S011", "name": "加藤 恵子", "position": "head-nurse", "step": 7, "hire_date": "2012-04-01",
       "qualifications": ["正看護師"], "latest_evaluation_score": "4.1", "latest_evaluation_date": "2025-03-31"},
      {"staff_number": "S012", "name": "吉田 真由美", "position": "nurse", "step": 5, "hire_date": "2019-04-01",
       "qualifications": ["正看護師"], "latest_evaluation_score": "3.7", "latest_evaluation_date": "2025-03-31"},
      {"staff_number": "S013", "name": "山口 陽子", "position": "nurse", "step": 3, "hire_date": "2021-04-01",
       "employment_status": "contract", "qualifications": ["准看護師"]},
      {"staff_number": "S014", "name": "松本 拓也", "position": "chief-counselor", "step": 6, "hire_date": "2016-04-01",
       "qualifications": ["社会福祉士"], "latest_evaluation_score": "3.9", "latest_evaluation_date": "2025-03-31"},
      {"staff_number": "S015", "name": "井上 美穂", "position": "counselor", "step": 4, "hire_date": "2020-04-01",
       "qualifications": ["社会福祉士"], "latest_evaluation_score": "3.4", "latest_evaluation_date": "2025-03-31"}
    ],
    "training_plans": [
      {"name": "新入職員研修", "training_type": "OJT", "fiscal_year": 2025, "scheduled_date": "2025-04-07",
       "duration_hours": 16, "instructor": "フロアリーダー", "mandatory": true,
       "objectives": "基本的な介護技術と施設のルールを習得する"},
      {"name": "介護技術向上研修", "training_type": "OFF_JT", "fiscal_year": 2025, "scheduled_date": "2025-06-15",
       "duration_hours": 8, "instructor": "外部講師"},
      {"name": "リーダー養成研修", "training_type": "EXTERNAL", "fiscal_year": 2025, "scheduled_date": "2025-09-10",
       "duration_hours": 24, "instructor": "東京都社会福祉協議会"},
      {"name": "認知症ケア研修", "training_type": "EXTERNAL", "fiscal_year": 2025, "scheduled_date": "2025-11-20",
       "duration_hours": 16, "mandatory": true}
    ],
    "promotion_criteria": [
      {"from": "care", "to": "chief-care", "required_experience_years": 3,
       "required_qualifications": "介護福祉士", "required_evaluation_score": "3.5",
       "review_process": "主任面談と施設長承認"},
      {"from": "chief-care", "to": "floor-leader", "required_experience_years": 5,
       "required_qualifications": "介護福祉士", "required_evaluation_score": "3.8",
       "review_process": "昇格審査会"},
      {"from": "nurse", "to": "head-nurse", "required_experience_years": 7,
       "required_evaluation_score": "4.0", "review_process": "昇格審査会"},
      {"from": "counselor", "to": "chief-counselor", "required_experience_years": 5,
       "required_evaluation_score": "3.5", "review_process": "施設長面談"}
    ]
  }],
  "plan": {
    "fiscal_year": 2025,
    "target_tier": "I",
    "career_path": {"career_path_1": true, "career_path_2": true, "career_path_3": true},
    "initiative_items": ["1-1", "2-1", "3-1"],
    "total_service_units": 7600000,
    "allocation": {"base_salary_increase": 8000000, "allowance_increase": 3000000, "bonus_increase": 1540000},
    "notes": "令和7年度 処遇改善計画"
  }
}`
}

// SampleDayServiceJSON is a small day service that has only started on its
// career path: one ladder, no wage tables yet, and a draft plan that
// qualifies for tier IV.
func SampleDayServiceJSON() string {
	return `{
  "provider": {
    "name": "株式会社 ひまわりケア",
    "address": "神奈川県横浜市港北区日吉1-1-1",
    "phone": "045-000-1111"
  },
  "facilities": [{
    "key": "himawari-day",
    "name": "デイサービス ひまわり",
    "service_type": "day_service",
    "facility_number": "1471000002",
    "capacity": 30,
    "staff_count": 3,
    "positions": [
      {"key": "care", "job_category": "care", "name": "介護職員", "level": 1},
      {"key": "chief-care", "job_category": "care", "name": "主任介護職員", "level": 2,
       "required_experience_months": 36, "required_qualifications": "介護福祉士"}
    ],
    "staff": [
      {"staff_number": "H001", "name": "青木 直人", "position": "chief-care", "hire_date": "2019-10-01",
       "current_base_salary": 230000, "qualifications": ["介護福祉士"]},
      {"staff_number": "H002", "name": "森 彩", "position": "care", "hire_date": "2023-04-01",
       "current_base_salary": 190000, "employment_status": "part_time"},
      {"staff_number": "H003", "name": "石川 悠", "position": "care", "hire_date": "2025-01-06",
       "current_base_salary": 185000, "employment_status": "temp"}
    ]
  }],
  "plan": {
    "fiscal_year": 2025,
    "target_tier": "III",
    "career_path": {"career_path_1": true},
    "initiative_items": ["1-2"],
    "total_service_units": 1200000
  }
}`
}
