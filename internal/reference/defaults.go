package reference

import "congress-trade-lab/internal/domain"

// Sector labels used by the default tables.
const (
	SectorSemiconductor = "반도체"
	SectorTech          = "테크"
	SectorSoftware      = "소프트웨어"
	SectorDefense       = "방산"
	SectorEV            = "전기차"
	SectorFinance       = "금융"
	SectorEnergy        = "에너지"
	SectorHealthcare    = "헬스케어"
	SectorMining        = "광업"
	SectorMedia         = "미디어"
)

func defaultProfiles() []domain.LegislatorProfile {
	return []domain.LegislatorProfile{
		{
			Name:          "Nancy Pelosi",
			DisplayName:   "낸시 펠로시",
			Committees:    []string{"전 하원의장"},
			Subcommittees: []string{},
			Jurisdiction:  []string{"입법 전반", "예산", "국방", "기술정책"},
			Sectors:       []string{SectorTech, SectorSemiconductor, SectorSoftware, SectorDefense},
			Note:          "남편 Paul Pelosi 명의 거래로 주목. 기술주 매수 타이밍이 정책 발표와 근접해 논란",
			Party:         domain.PartyDemocrat,
		},
		{
			Name:          "Dan Crenshaw",
			DisplayName:   "댄 크렌쇼",
			Committees:    []string{"하원 에너지·상업위원회", "하원 정보위원회"},
			Subcommittees: []string{},
			Jurisdiction:  []string{"에너지", "통신", "사이버보안", "정보기관 감독"},
			Sectors:       []string{SectorSoftware, SectorEnergy, SectorDefense},
			Note:          "정보위원회 소속으로 방산·사이버 관련 기업 투자 주목",
			Party:         domain.PartyRepublican,
		},
		{
			Name:          "Tommy Tuberville",
			DisplayName:   "토미 터버빌",
			Committees:    []string{"상원 군사위원회", "상원 농업위원회"},
			Subcommittees: []string{},
			Jurisdiction:  []string{"국방예산", "군사계약", "농업정책"},
			Sectors:       []string{SectorDefense, SectorSemiconductor},
			Note:          "상원 군사위 소속이면서 방산주 대량 매수로 윤리 조사 대상",
			Party:         domain.PartyRepublican,
		},
		{
			Name:          "Mark Green",
			DisplayName:   "마크 그린",
			Committees:    []string{"하원 국토안보위원회 (위원장)", "하원 군사위원회"},
			Subcommittees: []string{},
			Jurisdiction:  []string{"국토안보", "군사계약", "사이버보안", "방위산업"},
			Sectors:       []string{SectorDefense},
			Note:          "국토안보위 위원장으로서 방산 기업 직접 관할하면서 해당 종목 매수",
			Party:         domain.PartyRepublican,
		},
		{
			Name:          "Josh Gottheimer",
			DisplayName:   "조시 고트하이머",
			Committees:    []string{"하원 금융서비스위원회"},
			Subcommittees: []string{},
			Jurisdiction:  []string{"은행규제", "핀테크", "디지털자산", "금융시장"},
			Sectors:       []string{SectorTech, SectorFinance},
			Note:          "빅테크 규제 논의 중 기술주 매수",
			Party:         domain.PartyDemocrat,
		},
		{
			Name:          "Marjorie Taylor Greene",
			DisplayName:   "마조리 테일러 그린",
			Committees:    []string{"하원 국토안보위원회", "하원 감독·개혁위원회"},
			Subcommittees: []string{},
			Jurisdiction:  []string{"국토안보", "정부 운영", "감독"},
			Sectors:       []string{SectorEV, SectorMedia},
			Note:          "DJT(트럼프미디어) 매수는 정치적 충성도 표현으로 해석",
			Party:         domain.PartyRepublican,
		},
		{
			Name:          "Ro Khanna",
			DisplayName:   "로 칸나",
			Committees:    []string{"하원 군사위원회", "하원 감독·개혁위원회"},
			Subcommittees: []string{},
			Jurisdiction:  []string{"국방기술", "정부 효율", "실리콘밸리 기술"},
			Sectors:       []string{SectorTech, SectorSoftware},
			Note:          "실리콘밸리 지역구로 빅테크 본사 밀집, 기술주 투자 활발",
			Party:         domain.PartyDemocrat,
		},
		{
			Name:          "Michael McCaul",
			DisplayName:   "마이클 맥콜",
			Committees:    []string{"하원 외교위원회 (위원장)"},
			Subcommittees: []string{},
			Jurisdiction:  []string{"외교정책", "대중국 규제", "반도체 수출통제", "군사원조"},
			Sectors:       []string{SectorSemiconductor, SectorSoftware},
			Note:          "CHIPS Act 등 반도체 정책 주도하면서 NVDA, AVGO 대량 매수로 논란",
			Party:         domain.PartyRepublican,
		},
		{
			Name:          "Daniel Goldman",
			DisplayName:   "다니엘 골드만",
			Committees:    []string{"하원 국토안보위원회", "하원 감독·개혁위원회"},
			Subcommittees: []string{},
			Jurisdiction:  []string{"국토안보", "정부감독", "기업규제"},
			Sectors:       []string{SectorTech, SectorFinance},
			Note:          "뉴욕 금융가 지역구, 금융·테크 기업 투자 활발",
			Party:         domain.PartyDemocrat,
		},
		{
			Name:          "Debbie Wasserman Schultz",
			DisplayName:   "데비 워서먼 슐츠",
			Committees:    []string{"하원 세출위원회"},
			Subcommittees: []string{"환경·제조·핵심광물 소위원회"},
			Jurisdiction:  []string{"환경정책", "제조업", "핵심광물", "광업규제"},
			Sectors:       []string{SectorMining, SectorEnergy},
			Note:          "핵심광물 소위 소속이면서 Hecla Mining(HL) 매수 — 광업 규제 직접 관할",
			Party:         domain.PartyDemocrat,
		},
		{
			Name:          "Rick Scott",
			DisplayName:   "릭 스콧",
			Committees:    []string{"상원 상업·과학·교통위원회", "상원 국토안보위원회"},
			Subcommittees: []string{},
			Jurisdiction:  []string{"에너지정책", "교통", "상업", "국토안보"},
			Sectors:       []string{SectorEnergy},
			Note:          "에너지 정책 관련 위원회 소속으로 석유 대기업 투자",
			Party:         domain.PartyRepublican,
		},
		{
			Name:          "Lois Frankel",
			DisplayName:   "로이스 프랭클",
			Committees:    []string{"하원 세출위원회"},
			Subcommittees: []string{},
			Jurisdiction:  []string{"예산배분", "보건예산", "국방예산"},
			Sectors:       []string{SectorHealthcare},
			Note:          "세출위 소속으로 보건 예산에 영향력, 헬스케어 종목 거래",
			Party:         domain.PartyDemocrat,
		},
	}
}

func defaultSectors() map[string]string {
	m := make(map[string]string, 55)
	add := func(sector string, tickers ...string) {
		for _, t := range tickers {
			m[t] = sector
		}
	}
	add(SectorSemiconductor, "NVDA", "AMD", "AVGO", "INTC", "QCOM", "TSM", "MRVL", "MU")
	add(SectorTech, "AAPL", "GOOGL", "GOOG", "META", "AMZN", "NFLX")
	add(SectorSoftware, "MSFT", "CRM", "PLTR", "SNOW", "NOW", "ORCL")
	add(SectorDefense, "RTX", "LMT", "GD", "NOC", "BA", "HII", "LHX")
	add(SectorEV, "TSLA", "RIVN", "LCID")
	add(SectorFinance, "JPM", "BAC", "V", "MA", "GS", "MS", "BRK.B")
	add(SectorEnergy, "XOM", "CVX", "COP", "SLB")
	add(SectorHealthcare, "UNH", "JNJ", "PFE", "LLY", "ABBV", "MRK")
	add(SectorMining, "HL", "NEM", "FCX", "GOLD")
	add(SectorMedia, "DJT", "DIS", "CMCSA")
	return m
}

func defaultJurisdiction() map[string]string {
	return map[string]string{
		SectorSemiconductor: "반도체 수출통제·CHIPS Act",
		SectorTech:          "빅테크 규제·독점금지",
		SectorSoftware:      "사이버보안·기술정책",
		SectorDefense:       "국방예산·군사계약",
		SectorEV:            "친환경 정책·EV 보조금",
		SectorMedia:         "통신·미디어 규제",
		SectorFinance:       "은행규제·핀테크",
		SectorEnergy:        "에너지 정책·화석연료",
		SectorHealthcare:    "보건예산·의약품 규제",
		SectorMining:        "광물 규제·환경정책",
	}
}

// defaultAliases maps filing-name variants seen in disclosure feeds to profile keys.
func defaultAliases() map[string]string {
	return map[string]string{
		"Nancy P. Pelosi":          "Nancy Pelosi",
		"Daniel Crenshaw":          "Dan Crenshaw",
		"Thomas H. Tuberville":     "Tommy Tuberville",
		"Thomas Tuberville":        "Tommy Tuberville",
		"Mark E. Green":            "Mark Green",
		"Josh S. Gottheimer":       "Josh Gottheimer",
		"Marjorie Greene":          "Marjorie Taylor Greene",
		"Rohit Khanna":             "Ro Khanna",
		"Michael T. McCaul":        "Michael McCaul",
		"Daniel S. Goldman":        "Daniel Goldman",
		"Debbie Wasserman-Schultz": "Debbie Wasserman Schultz",
		"Richard L. Scott":         "Rick Scott",
		"Richard Scott":            "Rick Scott",
		"Lois J. Frankel":          "Lois Frankel",
	}
}
