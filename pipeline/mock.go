package pipeline

// Hand-rolled stage mocks for pipeline tests. Each mock records the calls it
// receives and fails when the argument matches an entry in Errors.

type MockFetcher struct {
	Calls  []string
	Errors map[string]error // keyed by URL
}

func (m *MockFetcher) Fetch(url string, dest string, force bool) error {
	m.Calls = append(m.Calls, url)
	return m.Errors[url]
}

type MockConverter struct {
	Calls  []string
	Report ConversionReport
	Errors map[string]error // keyed by raw path
}

func (m *MockConverter) ToParquet(rawPath string, parquetPath string) (ConversionReport, error) {
	m.Calls = append(m.Calls, rawPath)
	if err := m.Errors[rawPath]; err != nil {
		return ConversionReport{}, err
	}
	return m.Report, nil
}

type MockPublisher struct {
	Calls  []string
	Errors map[string]error // keyed by object key
}

func (m *MockPublisher) Publish(localPath string, key string) (string, error) {
	m.Calls = append(m.Calls, key)
	if err := m.Errors[key]; err != nil {
		return "", err
	}
	return "s3://mock-bucket/" + key, nil
}

type MockLoader struct {
	Calls  []string
	Modes  []WriteMode
	Report LoadReport
	Errors map[string]error // keyed by table name
}

func (m *MockLoader) Load(sourceUri string, schema string, table string, mode WriteMode) (LoadReport, error) {
	m.Calls = append(m.Calls, table)
	m.Modes = append(m.Modes, mode)
	if err := m.Errors[table]; err != nil {
		return LoadReport{}, err
	}
	return m.Report, nil
}
