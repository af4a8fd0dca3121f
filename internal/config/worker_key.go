package config

type WorkerKeyStruct struct {
	PersistCheatsQueue  string
	RankDirectionsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PersistCheatsQueue:  "persist_cheats_queue",
	RankDirectionsQueue: "rank_directions_queue",
}
