package service

type App struct {
	Team      *TeamService
	WorkItem  *WorkItemService
	Rebalance *RebalanceService
	Stats     *StatsService
}

func NewApp(team *TeamService, workItem *WorkItemService, rebalance *RebalanceService, stats *StatsService) *App {
	return &App{
		Team:      team,
		WorkItem:  workItem,
		Rebalance: rebalance,
		Stats:     stats,
	}
}
