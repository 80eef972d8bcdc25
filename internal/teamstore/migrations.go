package teamstore

const schema = `
CREATE TABLE IF NOT EXISTS agents (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    role TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'idle',
    current_task_id INTEGER,
    total_tasks_assigned INTEGER NOT NULL DEFAULT 0,
    total_tasks_completed INTEGER NOT NULL DEFAULT 0,
    last_heartbeat TIMESTAMP,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS projects (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'planning',
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tasks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'todo',
    priority TEXT NOT NULL DEFAULT 'normal',
    assignee_id INTEGER REFERENCES agents(id),
    project_id INTEGER REFERENCES projects(id),
    progress INTEGER NOT NULL DEFAULT 0,
    due_date TEXT,
    blocked_reason TEXT,
    notes TEXT,
    estimated_hours REAL,
    actual_duration_minutes INTEGER,
    started_at TIMESTAMP,
    completed_at TIMESTAMP,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
CREATE INDEX IF NOT EXISTS idx_tasks_assignee ON tasks(assignee_id);
CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id);

CREATE TABLE IF NOT EXISTS task_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    task_id INTEGER,
    agent_id INTEGER,
    action TEXT NOT NULL,
    old_status TEXT,
    new_status TEXT,
    old_progress INTEGER,
    new_progress INTEGER,
    notes TEXT,
    timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_history_task ON task_history(task_id);
CREATE INDEX IF NOT EXISTS idx_history_timestamp ON task_history(timestamp);

CREATE VIEW IF NOT EXISTS v_dashboard_stats AS
SELECT
    (SELECT COUNT(*) FROM agents)                                    AS total_agents,
    (SELECT COUNT(*) FROM agents WHERE status = 'active')            AS active_agents,
    (SELECT COUNT(*) FROM agents WHERE status = 'idle')              AS idle_agents,
    (SELECT COUNT(*) FROM agents WHERE status = 'blocked')           AS blocked_agents,
    (SELECT COUNT(*) FROM projects)                                  AS total_projects,
    (SELECT COUNT(*) FROM projects WHERE status = 'active')          AS active_projects,
    (SELECT COUNT(*) FROM tasks)                                     AS total_tasks,
    (SELECT COUNT(*) FROM tasks WHERE status = 'todo')               AS todo_tasks,
    (SELECT COUNT(*) FROM tasks WHERE status = 'in_progress')        AS in_progress_tasks,
    (SELECT COUNT(*) FROM tasks WHERE status = 'done')               AS completed_tasks,
    (SELECT COUNT(*) FROM tasks WHERE status = 'blocked')            AS blocked_tasks,
    (SELECT CAST(ROUND(COALESCE(AVG(progress), 0)) AS INTEGER) FROM tasks) AS avg_progress,
    (SELECT COUNT(*) FROM tasks
        WHERE due_date = date('now', 'localtime')
          AND status != 'done')                                      AS due_today,
    (SELECT COUNT(*) FROM tasks
        WHERE due_date IS NOT NULL AND due_date != ''
          AND due_date < date('now', 'localtime')
          AND status != 'done')                                      AS overdue_tasks;

CREATE VIEW IF NOT EXISTS v_agent_workload AS
SELECT
    a.id,
    a.name,
    a.role,
    a.status,
    COALESCE(a.current_task_id, 0)                                   AS current_task_id,
    a.total_tasks_completed,
    a.last_heartbeat,
    COUNT(CASE WHEN t.status != 'done' THEN 1 END)                   AS active_tasks,
    COUNT(CASE WHEN t.status = 'in_progress' THEN 1 END)             AS in_progress_tasks,
    COALESCE(AVG(CASE WHEN t.status != 'done' THEN t.progress END), 0) AS avg_progress
FROM agents a
LEFT JOIN tasks t ON t.assignee_id = a.id
GROUP BY a.id;

CREATE VIEW IF NOT EXISTS v_project_status AS
SELECT
    p.id,
    p.name,
    p.status,
    COUNT(t.id)                                                      AS total_tasks,
    COUNT(CASE WHEN t.status = 'done' THEN 1 END)                    AS completed_tasks,
    COUNT(CASE WHEN t.status = 'in_progress' THEN 1 END)             AS in_progress_tasks,
    COUNT(CASE WHEN t.status = 'blocked' THEN 1 END)                 AS blocked_tasks,
    CASE WHEN COUNT(t.id) = 0 THEN 0
         ELSE CAST(ROUND(100.0 * COUNT(CASE WHEN t.status = 'done' THEN 1 END) / COUNT(t.id)) AS INTEGER)
    END                                                              AS progress_pct
FROM projects p
LEFT JOIN tasks t ON t.project_id = p.id
GROUP BY p.id;

CREATE VIEW IF NOT EXISTS v_task_summary AS
SELECT
    t.id,
    t.title,
    t.description,
    t.status,
    t.priority,
    COALESCE(t.assignee_id, 0)                                       AS assignee_id,
    COALESCE(t.project_id, 0)                                        AS project_id,
    t.progress,
    COALESCE(t.due_date, '')                                         AS due_date,
    COALESCE(t.blocked_reason, '')                                   AS blocked_reason,
    COALESCE(t.notes, '')                                            AS notes,
    t.started_at,
    t.completed_at,
    t.created_at,
    t.updated_at,
    COALESCE(p.name, '')                                             AS project_name,
    COALESCE(a.name, '')                                             AS assignee_name
FROM tasks t
LEFT JOIN projects p ON t.project_id = p.id
LEFT JOIN agents a ON t.assignee_id = a.id;
`
